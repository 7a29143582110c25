// Package catalog 가격 이력 기록의 대상이 되는 상품, 상점, 통화, 국가,
// 고객 그룹 정보를 조회하는 저장소를 제공합니다.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop 가격 이력을 독립적으로 관리하는 판매 채널(상점)
type Shop struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:128" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}

// Currency 상점에서 사용 가능한 통화와 기준 통화 대비 환율
type Currency struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ISOCode        string          `gorm:"size:3;uniqueIndex" json:"iso_code"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(13,6)" json:"conversion_rate"`
	Active         bool            `gorm:"default:true" json:"active"`
}

// Country 배송 국가와 해당 국가에 적용되는 부가세율(%)
type Country struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	ISOCode string          `gorm:"size:2;uniqueIndex" json:"iso_code"`
	TaxRate decimal.Decimal `gorm:"type:decimal(10,3)" json:"tax_rate"`
	Default bool            `gorm:"default:false" json:"default"`
	Active  bool            `gorm:"default:true" json:"active"`
}

// CustomerGroup 고객 그룹과 그룹 단위 할인 정책
type CustomerGroup struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Name             string          `gorm:"size:64" json:"name"`
	Guest            bool            `gorm:"default:false" json:"guest"`
	Unidentified     bool            `gorm:"default:false" json:"unidentified"`
	ReductionPercent decimal.Decimal `gorm:"type:decimal(10,3)" json:"reduction_percent"`
}

// Product 판매 상품. BasePrice는 세금 제외 기준 가격입니다.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255" json:"name"`
	BasePrice decimal.Decimal `gorm:"type:decimal(20,6)" json:"base_price"`
	Active    bool            `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductVariant 상품의 옵션 조합(색상, 사이즈 등). PriceDelta는 기준 가격에 더해지는 차액입니다.
type ProductVariant struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"index" json:"product_id"`
	Reference  string          `gorm:"size:64" json:"reference"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(20,6)" json:"price_delta"`
}

// 가격 규칙 할인 방식
const (
	// ReductionAmount 정액 할인 (통화 단위)
	ReductionAmount = "amount"

	// ReductionPercentage 정률 할인 (%)
	ReductionPercentage = "percentage"
)

// PriceRule 기간 한정 할인 등 특정 범위(상점/통화/국가/그룹/상품/옵션)에
// 적용되는 가격 규칙. 범위 필드 값 0은 "모든 대상"을 의미합니다.
type PriceRule struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ShopID        uint            `gorm:"index" json:"shop_id"`
	CurrencyID    uint            `json:"currency_id"`
	CountryID     uint            `json:"country_id"`
	GroupID       uint            `json:"group_id"`
	ProductID     uint            `gorm:"index" json:"product_id"`
	VariantID     uint            `json:"variant_id"`
	FixedPrice    decimal.Decimal `gorm:"type:decimal(20,6);default:-1" json:"fixed_price"`
	Reduction     decimal.Decimal `gorm:"type:decimal(20,6)" json:"reduction"`
	ReductionType string          `gorm:"size:16" json:"reduction_type"`
	ReductionTax  bool            `gorm:"default:true" json:"reduction_tax"`
	DateFrom      *time.Time      `json:"date_from"`
	DateTo        *time.Time      `json:"date_to"`
}

// AppliesAt 규칙의 적용 기간에 지정된 시각이 포함되는지 여부를 반환합니다.
// 기간이 지정되지 않은 쪽은 제한이 없는 것으로 간주합니다.
func (r *PriceRule) AppliesAt(t time.Time) bool {
	if r.DateFrom != nil && t.Before(*r.DateFrom) {
		return false
	}
	if r.DateTo != nil && t.After(*r.DateTo) {
		return false
	}
	return true
}

// Models 스키마 마이그레이션 대상이 되는 카탈로그 모델 목록을 반환합니다.
func Models() []interface{} {
	return []interface{}{
		&Shop{},
		&Currency{},
		&Country{},
		&CustomerGroup{},
		&Product{},
		&ProductVariant{},
		&PriceRule{},
	}
}
