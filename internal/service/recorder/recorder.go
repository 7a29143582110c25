// Package recorder 상품의 판매 문맥별 가격을 관측하여 이력으로 기록하고,
// 보존 기간이 지난 이력을 정리합니다.
package recorder

import (
	"context"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/catalog"
	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/history"
	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/darkkaiser/omnibus-server/internal/pricing"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/shopspring/decimal"
)

const component = "recorder.service"

// Catalog 가격 기록 대상(상점, 통화, 국가, 그룹, 상품 옵션)을 열거하는 인터페이스
type Catalog interface {
	VariantIDs(ctx context.Context, productID uint) ([]uint, error)
	ActiveShops(ctx context.Context) ([]catalog.Shop, error)
	ActiveCurrencies(ctx context.Context) ([]catalog.Currency, error)
	ActiveCountries(ctx context.Context) ([]catalog.Country, error)
	DefaultCountry(ctx context.Context) (*catalog.Country, error)
	Groups(ctx context.Context) ([]catalog.CustomerGroup, error)
	AnonymousGroups(ctx context.Context) ([]catalog.CustomerGroup, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	ActiveProductIDs(ctx context.Context, offset, limit int) ([]uint, error)
}

// HistoryStore 가격 관측치를 저장하고 정리하는 인터페이스
type HistoryStore interface {
	Insert(ctx context.Context, obs *history.PriceObservation) error
	HasRecentDuplicate(ctx context.Context, key history.ObservationKey, priceTaxIncl decimal.Decimal, now time.Time) (bool, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PriceQuoter 판매 문맥에서의 판매 가격을 계산하는 인터페이스
type PriceQuoter interface {
	PriceFor(ctx context.Context, productID, variantID uint, withTax bool, pctx pricing.Context) (decimal.Decimal, error)
}

// Recorder 가격 이력 기록기
type Recorder struct {
	catalog Catalog
	store   HistoryStore
	engine  PriceQuoter
	cfg     config.OmnibusConfig

	// now 테스트에서 기준 시각을 고정하기 위해 주입 가능하다.
	now func() time.Time
}

// New 새로운 가격 이력 기록기를 생성합니다.
func New(catalogStore Catalog, historyStore HistoryStore, engine PriceQuoter, cfg config.OmnibusConfig) *Recorder {
	return &Recorder{
		catalog: catalogStore,
		store:   historyStore,
		engine:  engine,
		cfg:     cfg,
		now:     time.Now,
	}
}

// RecordObservations 지정된 상품의 모든 판매 문맥을 순회하며 현재 가격을 기록합니다.
//
// 판매 문맥은 {상점} × ({상품 단독} ∪ {옵션들}) × {활성 통화} ×
// {국가 또는 기본 국가} × {그룹 또는 비회원 그룹}의 조합입니다.
//
// 다음 조합은 조용히 건너뜁니다 (정상 동작이며 에러가 아닙니다):
//   - 세금 포함가와 세금 제외가가 모두 0 이하인 조합 (해당 문맥에서 판매하지 않음)
//   - 최근 24시간 내에 같은 가격이 이미 기록된 조합 (중복 방지)
//
// 개별 조합의 가격 계산이나 저장 실패는 로그만 남기고 순회를 계속합니다.
// 반환값은 실제로 기록된 관측치 수입니다.
func (r *Recorder) RecordObservations(ctx context.Context, productID uint) (int, error) {
	logger := applog.WithComponentAndFields(component, map[string]interface{}{
		"product_id": productID,
	})

	variantIDs, err := r.catalog.VariantIDs(ctx, productID)
	if err != nil {
		return 0, err
	}
	// 옵션이 있어도 상품 단독 문맥(variant_id = 0)은 항상 기록 대상이다.
	variants := append([]uint{0}, variantIDs...)

	shops, err := r.catalog.ActiveShops(ctx)
	if err != nil {
		return 0, err
	}

	currencies, err := r.catalog.ActiveCurrencies(ctx)
	if err != nil {
		return 0, err
	}

	countries, err := r.enumerateCountries(ctx)
	if err != nil {
		return 0, err
	}

	groups, err := r.enumerateGroups(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	recorded := 0

	for _, shop := range shops {
		for _, variantID := range variants {
			for _, cur := range currencies {
				for _, country := range countries {
					for _, group := range groups {
						pctx := pricing.Context{
							ShopID:     shop.ID,
							CurrencyID: cur.ID,
							CountryID:  country.ID,
							GroupID:    group.ID,
						}

						ok, err := r.recordTuple(ctx, productID, variantID, pctx, now)
						if err != nil {
							logger.WithError(err).WithFields(map[string]interface{}{
								"variant_id":  variantID,
								"shop_id":     shop.ID,
								"currency_id": cur.ID,
								"country_id":  country.ID,
								"group_id":    group.ID,
							}).Warn("가격 관측치 기록에 실패하여 해당 조합을 건너뜁니다")
							continue
						}
						if ok {
							recorded++
						}
					}
				}
			}
		}
	}

	logger.WithField("recorded", recorded).Debug("상품 가격 이력 기록이 완료되었습니다")

	return recorded, nil
}

// recordTuple 단일 판매 문맥의 가격을 계산하고 필요한 경우 기록합니다.
// 기록했으면 true, 건너뛰었으면 false를 반환합니다.
func (r *Recorder) recordTuple(ctx context.Context, productID, variantID uint, pctx pricing.Context, now time.Time) (bool, error) {
	priceTaxIncl, err := r.engine.PriceFor(ctx, productID, variantID, true, pctx)
	if err != nil {
		return false, err
	}
	priceTaxExcl, err := r.engine.PriceFor(ctx, productID, variantID, false, pctx)
	if err != nil {
		return false, err
	}

	// 두 가격이 모두 0 이하이면 해당 문맥에서 판매하지 않는 상품이다.
	if priceTaxIncl.Sign() <= 0 && priceTaxExcl.Sign() <= 0 {
		return false, nil
	}

	key := history.ObservationKey{
		ShopID:     pctx.ShopID,
		ProductID:  productID,
		VariantID:  variantID,
		CurrencyID: pctx.CurrencyID,
		CountryID:  pctx.CountryID,
		GroupID:    pctx.GroupID,
	}

	duplicate, err := r.store.HasRecentDuplicate(ctx, key, priceTaxIncl, now)
	if err != nil {
		return false, err
	}
	if duplicate {
		return false, nil
	}

	obs := &history.PriceObservation{
		ShopID:       key.ShopID,
		ProductID:    key.ProductID,
		VariantID:    key.VariantID,
		CurrencyID:   key.CurrencyID,
		CountryID:    key.CountryID,
		GroupID:      key.GroupID,
		PriceTaxExcl: priceTaxExcl,
		PriceTaxIncl: priceTaxIncl,
		CapturedAt:   now,
	}
	if err := r.store.Insert(ctx, obs); err != nil {
		return false, err
	}

	return true, nil
}

// enumerateCountries 기록 대상 국가 목록을 반환합니다.
// 모든 국가 기록이 꺼져 있으면 기본 배송 국가만 대상이 됩니다.
func (r *Recorder) enumerateCountries(ctx context.Context) ([]catalog.Country, error) {
	if r.cfg.LogAllCountries {
		return r.catalog.ActiveCountries(ctx)
	}

	country, err := r.catalog.DefaultCountry(ctx)
	if err != nil {
		return nil, err
	}
	return []catalog.Country{*country}, nil
}

// enumerateGroups 기록 대상 고객 그룹 목록을 반환합니다.
// 모든 그룹 기록이 꺼져 있으면 비회원(게스트, 미식별) 그룹만 대상이 됩니다.
func (r *Recorder) enumerateGroups(ctx context.Context) ([]catalog.CustomerGroup, error) {
	if r.cfg.LogAllGroups {
		return r.catalog.Groups(ctx)
	}
	return r.catalog.AnonymousGroups(ctx)
}

// PurgeOlderThan 보존 기간이 지난 가격 이력을 삭제하고 삭제된 건수를 반환합니다.
func (r *Recorder) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, apperrors.Newf(apperrors.InvalidInput, "이력 보존 기간은 1 이상이어야 합니다: %d", retentionDays)
	}

	cutoff := r.now().AddDate(0, 0, -retentionDays)
	purged, err := r.store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if purged > 0 {
		applog.WithComponentAndFields(component, map[string]interface{}{
			"purged": purged,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("보존 기간이 지난 가격 이력을 삭제했습니다")
	}

	return purged, nil
}

// Sweep 활성 상품을 일 단위로 순환하는 배치를 골라 가격을 기록하고,
// 이어서 보존 기간이 지난 이력을 정리합니다. 스케줄러와 크론 엔드포인트가 호출합니다.
//
// limit가 0 이하이면 전체 상품을 대상으로 합니다. 그렇지 않으면 실행일의
// 날짜(day of month)에 따라 시작 위치를 이동시켜, 매일 다른 상품 묶음이
// 처리되도록 전체 카탈로그를 순환합니다.
//
// 반환값은 (기록된 관측치 수, 삭제된 이력 수, 에러)입니다.
func (r *Recorder) Sweep(ctx context.Context, limit int) (int, int64, error) {
	var productIDs []uint

	if limit <= 0 {
		ids, err := r.catalog.ActiveProductIDs(ctx, 0, 0)
		if err != nil {
			return 0, 0, err
		}
		productIDs = ids
	} else {
		total, err := r.catalog.CountActiveProducts(ctx)
		if err != nil {
			return 0, 0, err
		}
		if total == 0 {
			return 0, 0, nil
		}

		offset := (r.now().Day() * limit) % int(total)
		ids, err := r.catalog.ActiveProductIDs(ctx, offset, limit)
		if err != nil {
			return 0, 0, err
		}
		productIDs = ids
	}

	recorded := 0
	for _, productID := range productIDs {
		count, err := r.RecordObservations(ctx, productID)
		if err != nil {
			applog.WithComponentAndFields(component, map[string]interface{}{
				"product_id": productID,
			}).WithError(err).Error("상품 가격 이력 기록에 실패하여 다음 상품으로 넘어갑니다")
			continue
		}
		recorded += count
	}

	purged, err := r.PurgeOlderThan(ctx, r.cfg.RetentionDays)
	if err != nil {
		return recorded, 0, err
	}

	applog.WithComponentAndFields(component, map[string]interface{}{
		"products": len(productIDs),
		"recorded": recorded,
		"purged":   purged,
	}).Info("일괄 가격 수집이 완료되었습니다")

	return recorded, purged, nil
}
