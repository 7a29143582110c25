// Package pricing 카탈로그 정보(기준 가격, 옵션 차액, 그룹 할인, 가격 규칙,
// 환율, 세율)를 조합하여 특정 판매 문맥에서의 최종 판매 가격을 계산합니다.
package pricing

import (
	"context"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/catalog"
	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/shopspring/decimal"
)

// pricePrecision 계산된 가격의 소수점 자릿수. 이력 테이블의 DECIMAL(20,6)과 일치합니다.
const pricePrecision = 6

// CatalogReader 가격 계산에 필요한 카탈로그 정보를 조회하는 인터페이스
type CatalogReader interface {
	ProductByID(ctx context.Context, id uint) (*catalog.Product, error)
	VariantByID(ctx context.Context, id uint) (*catalog.ProductVariant, error)
	CurrencyByID(ctx context.Context, id uint) (*catalog.Currency, error)
	CountryByID(ctx context.Context, id uint) (*catalog.Country, error)
	GroupByID(ctx context.Context, id uint) (*catalog.CustomerGroup, error)
	RulesForProduct(ctx context.Context, productID, variantID uint) ([]catalog.PriceRule, error)
}

// Context 가격이 결정되는 판매 문맥(상점, 통화, 국가, 고객 그룹)
type Context struct {
	ShopID     uint
	CurrencyID uint
	CountryID  uint
	GroupID    uint
}

// Engine 판매 가격 계산기
type Engine struct {
	catalog CatalogReader

	// now 테스트에서 기준 시각을 고정하기 위해 주입 가능하다.
	now func() time.Time
}

// NewEngine 새로운 가격 계산기를 생성합니다.
func NewEngine(catalogReader CatalogReader) *Engine {
	return &Engine{
		catalog: catalogReader,
		now:     time.Now,
	}
}

// PriceFor 지정된 판매 문맥에서 상품(또는 상품 옵션)의 판매 가격을 계산합니다.
//
// 계산 순서: 기준 가격(세금 제외) + 옵션 차액 → 그룹 할인 → 환율 변환 →
// 적용 가능한 가격 규칙 중 최저가 선택 → (withTax 시) 국가 세율 적용.
//
// 상품이 존재하지 않거나 비활성 상태이면 에러 없이 0을 반환합니다.
// 계산 결과가 0 이하인 경우에도 0을 반환합니다.
func (e *Engine) PriceFor(ctx context.Context, productID, variantID uint, withTax bool, pctx Context) (decimal.Decimal, error) {
	product, err := e.catalog.ProductByID(ctx, productID)
	if err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if !product.Active {
		return decimal.Zero, nil
	}

	// 기준 가격(세금 제외) + 옵션 차액
	price := product.BasePrice
	if variantID > 0 {
		variant, err := e.catalog.VariantByID(ctx, variantID)
		if err != nil {
			if apperrors.Is(err, apperrors.NotFound) {
				return decimal.Zero, nil
			}
			return decimal.Zero, err
		}
		price = price.Add(variant.PriceDelta)
	}

	// 고객 그룹 할인(%)
	if pctx.GroupID > 0 {
		group, err := e.catalog.GroupByID(ctx, pctx.GroupID)
		if err != nil && !apperrors.Is(err, apperrors.NotFound) {
			return decimal.Zero, err
		}
		if err == nil && group.ReductionPercent.IsPositive() {
			price = applyPercentReduction(price, group.ReductionPercent)
		}
	}

	// 환율 변환
	conversionRate := decimal.NewFromInt(1)
	if pctx.CurrencyID > 0 {
		currency, err := e.catalog.CurrencyByID(ctx, pctx.CurrencyID)
		if err != nil {
			if apperrors.Is(err, apperrors.NotFound) {
				return decimal.Zero, nil
			}
			return decimal.Zero, err
		}
		if currency.ConversionRate.IsPositive() {
			conversionRate = currency.ConversionRate
		}
	}
	price = price.Mul(conversionRate)

	// 국가 세율(%)
	taxRate := decimal.Zero
	if pctx.CountryID > 0 {
		country, err := e.catalog.CountryByID(ctx, pctx.CountryID)
		if err != nil && !apperrors.Is(err, apperrors.NotFound) {
			return decimal.Zero, err
		}
		if err == nil {
			taxRate = country.TaxRate
		}
	}

	// 적용 가능한 가격 규칙 중 결과 가격이 가장 낮은 규칙 선택
	rules, err := e.catalog.RulesForProduct(ctx, productID, variantID)
	if err != nil {
		return decimal.Zero, err
	}

	now := e.now()
	for _, rule := range rules {
		if !ruleMatches(&rule, pctx) || !rule.AppliesAt(now) {
			continue
		}

		candidate := applyRule(&rule, price, conversionRate, taxRate)
		if candidate.LessThan(price) {
			price = candidate
		}
	}

	if withTax {
		price = addTax(price, taxRate)
	}

	price = price.Round(pricePrecision)
	if price.Sign() <= 0 {
		return decimal.Zero, nil
	}
	return price, nil
}

// ruleMatches 가격 규칙의 적용 범위가 판매 문맥과 일치하는지 확인합니다.
// 범위 필드 값 0은 모든 대상과 일치합니다.
func ruleMatches(rule *catalog.PriceRule, pctx Context) bool {
	if rule.ShopID != 0 && rule.ShopID != pctx.ShopID {
		return false
	}
	if rule.CurrencyID != 0 && rule.CurrencyID != pctx.CurrencyID {
		return false
	}
	if rule.CountryID != 0 && rule.CountryID != pctx.CountryID {
		return false
	}
	if rule.GroupID != 0 && rule.GroupID != pctx.GroupID {
		return false
	}
	return true
}

// applyRule 가격 규칙을 적용한 결과 가격(세금 제외, 판매 통화 기준)을 계산합니다.
func applyRule(rule *catalog.PriceRule, price, conversionRate, taxRate decimal.Decimal) decimal.Decimal {
	candidate := price

	// 고정 가격은 기준 통화의 세금 제외 금액으로 정의되므로 환율 변환 후 사용한다.
	if rule.FixedPrice.Sign() >= 0 {
		candidate = rule.FixedPrice.Mul(conversionRate)
	}

	switch rule.ReductionType {
	case catalog.ReductionPercentage:
		candidate = applyPercentReduction(candidate, rule.Reduction)
	case catalog.ReductionAmount:
		amount := rule.Reduction
		// 할인액이 세금 포함 금액이면 세금 제외 금액으로 환산하여 차감한다.
		if rule.ReductionTax && taxRate.IsPositive() {
			divisor := decimal.NewFromInt(1).Add(taxRate.Div(decimal.NewFromInt(100)))
			amount = amount.DivRound(divisor, pricePrecision)
		}
		candidate = candidate.Sub(amount)
	}

	return candidate
}

// applyPercentReduction 정률 할인(%)을 적용합니다.
func applyPercentReduction(price, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(percent.Div(decimal.NewFromInt(100)))
	return price.Mul(factor)
}

// addTax 세금 제외 가격에 세율(%)을 적용하여 세금 포함 가격을 계산합니다.
func addTax(price, taxRate decimal.Decimal) decimal.Decimal {
	if !taxRate.IsPositive() {
		return price
	}
	factor := decimal.NewFromInt(1).Add(taxRate.Div(decimal.NewFromInt(100)))
	return price.Mul(factor)
}
