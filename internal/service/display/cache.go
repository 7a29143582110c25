package display

import (
	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/shopspring/decimal"
)

// RequestCache 한 번의 렌더링 요청 범위에서 가격 이력 조회 결과를 재사용하는 캐시.
//
// 상품 목록 페이지처럼 하나의 요청에서 같은 문맥의 이력을 여러 번 조회하는 경우
// 데이터베이스 왕복을 줄이기 위해 사용합니다. 요청이 끝나면 함께 버려지므로
// 프로세스 전역 상태를 가지지 않으며, 동시 사용은 지원하지 않습니다.
type RequestCache struct {
	prices map[history.ObservationKey][]decimal.Decimal
}

// NewRequestCache 새로운 요청 범위 캐시를 생성합니다.
func NewRequestCache() *RequestCache {
	return &RequestCache{
		prices: make(map[history.ObservationKey][]decimal.Decimal),
	}
}

func (c *RequestCache) get(key history.ObservationKey) ([]decimal.Decimal, bool) {
	prices, ok := c.prices[key]
	return prices, ok
}

func (c *RequestCache) put(key history.ObservationKey, prices []decimal.Decimal) {
	c.prices[key] = prices
}

// cachedPrices nil 캐시를 허용하는 조회 도우미
func cachedPrices(cache *RequestCache, key history.ObservationKey) ([]decimal.Decimal, bool) {
	if cache == nil {
		return nil, false
	}
	return cache.get(key)
}
