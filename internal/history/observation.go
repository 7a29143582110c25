// Package history 상품 가격의 시간대별 관측 이력을 저장하고 조회합니다.
// 이력은 추가 전용(append-only)이며, 보존 기간이 지난 행만 일괄 삭제됩니다.
package history

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObservationKey 가격 관측치를 식별하는 문맥 키.
// 동일한 키를 가진 관측치들이 하나의 가격 이력 시계열을 구성합니다.
type ObservationKey struct {
	ShopID     uint `json:"shop_id"`
	ProductID  uint `json:"product_id"`
	VariantID  uint `json:"variant_id"`
	CurrencyID uint `json:"currency_id"`
	CountryID  uint `json:"country_id"`
	GroupID    uint `json:"group_id"`
}

// PriceObservation 특정 문맥에서 관측된 상품 가격 한 건
type PriceObservation struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ShopID       uint            `gorm:"index:idx_observation_ctx,priority:1" json:"shop_id"`
	ProductID    uint            `gorm:"index:idx_observation_ctx,priority:2;index:idx_observation_product,priority:1" json:"product_id"`
	VariantID    uint            `gorm:"index:idx_observation_ctx,priority:3;index:idx_observation_product,priority:2" json:"variant_id"`
	CurrencyID   uint            `gorm:"index:idx_observation_ctx,priority:4" json:"currency_id"`
	CountryID    uint            `gorm:"index:idx_observation_ctx,priority:5" json:"country_id"`
	GroupID      uint            `gorm:"index:idx_observation_ctx,priority:6" json:"group_id"`
	PriceTaxExcl decimal.Decimal `gorm:"type:decimal(20,6)" json:"price_tax_excl"`
	PriceTaxIncl decimal.Decimal `gorm:"type:decimal(20,6)" json:"price_tax_incl"`
	CapturedAt   time.Time       `gorm:"index:idx_observation_ctx,priority:7;index:idx_observation_product,priority:3" json:"captured_at"`
}

// TableName 관측 이력 테이블명을 지정합니다.
func (PriceObservation) TableName() string {
	return "price_observations"
}

// Key 관측치의 문맥 키를 반환합니다.
func (o *PriceObservation) Key() ObservationKey {
	return ObservationKey{
		ShopID:     o.ShopID,
		ProductID:  o.ProductID,
		VariantID:  o.VariantID,
		CurrencyID: o.CurrencyID,
		CountryID:  o.CountryID,
		GroupID:    o.GroupID,
	}
}

// Models 스키마 마이그레이션 대상이 되는 이력 모델 목록을 반환합니다.
func Models() []interface{} {
	return []interface{}{
		&PriceObservation{},
	}
}
