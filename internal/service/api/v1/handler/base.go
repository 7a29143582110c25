// Package handler v1 API의 HTTP 요청 핸들러를 제공합니다.
//
// 이 패키지는 HTTP 요청을 받아 검증하고, 비즈니스 로직을 호출한 후,
// 적절한 HTTP 응답을 반환하는 핸들러 함수들을 포함합니다.
package handler

import (
	"context"
	"reflect"
	"strings"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/darkkaiser/omnibus-server/internal/pricing"
	"github.com/darkkaiser/omnibus-server/internal/service/display"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// component v1 핸들러 로그의 컴포넌트 이름
const component = "api.v1.handler"

// HistoryStore 가격 관측 이력의 조회와 삭제를 담당하는 인터페이스입니다.
type HistoryStore interface {
	List(ctx context.Context, filter history.Filter) ([]history.PriceObservation, int64, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	ForEachBatch(ctx context.Context, filter history.Filter, batchSize int, fn func([]history.PriceObservation) error) error
}

// Snapshotter 단일 상품의 가격 관측치 수집을 담당하는 인터페이스입니다.
type Snapshotter interface {
	RecordObservations(ctx context.Context, productID uint) (int, error)
}

// DisplayRenderer 최저가 정보 HTML 조각 생성을 담당하는 인터페이스입니다.
type DisplayRenderer interface {
	Render(ctx context.Context, ref display.ProductRef, view display.View, pctx pricing.Context, locale string, cache *display.RequestCache) display.RenderResult
	Header() string
}

// Handler v1 API 요청을 처리하고 비즈니스 로직을 연결하는 핸들러입니다.
//
// Handler는 의존성 주입을 통해 생성되며, 이력 저장소와 수집기,
// 렌더러를 주입받습니다.
type Handler struct {
	// historyStore 가격 관측 이력의 조회/삭제를 담당하는 저장소
	historyStore HistoryStore

	// snapshotter 상품 단위 가격 수집을 담당하는 수집기
	snapshotter Snapshotter

	// renderer 최저가 정보 HTML 조각을 생성하는 렌더러
	renderer DisplayRenderer

	// loggingMode 이력 기록 방식 설정. 훅 트리거 수집 요청의 수행 여부를 결정합니다.
	loggingMode string

	// validate 요청 본문 검증기
	validate *validator.Validate
}

// NewHandler Handler 인스턴스를 생성합니다.
// loggingMode가 비어 있으면 instant 방식으로 동작합니다.
func NewHandler(historyStore HistoryStore, snapshotter Snapshotter, renderer DisplayRenderer, loggingMode string) *Handler {
	if historyStore == nil {
		panic("HistoryStore는 필수입니다")
	}
	if snapshotter == nil {
		panic("Snapshotter는 필수입니다")
	}
	if renderer == nil {
		panic("DisplayRenderer는 필수입니다")
	}

	if loggingMode == "" {
		loggingMode = config.LoggingModeInstant
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		historyStore: historyStore,

		snapshotter: snapshotter,

		renderer: renderer,

		loggingMode: loggingMode,

		validate: v,
	}
}

// log 공통 로깅 필드가 설정된 로거 엔트리를 반환합니다.
func (h *Handler) log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(component, applog.Fields{
		"endpoint": c.Path(),
	})
}
