package history

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// duplicateTolerance 중복 판정 시 허용하는 세금 포함 가격의 오차
	duplicateTolerance = "0.000001"

	// duplicateWindow 중복 판정 시 조회하는 최근 이력 기간
	duplicateWindow = 24 * time.Hour
)

// 최저가 계산에 사용하는 가격 컬럼
const (
	priceColumnTaxIncl = "price_tax_incl"
	priceColumnTaxExcl = "price_tax_excl"
)

// Filter 이력 목록 조회 조건
type Filter struct {
	ProductID uint
	ShopID    uint
	VariantID *uint
	Page      int
	PerPage   int
}

// Store 가격 관측 이력을 데이터베이스에 저장하고 조회하는 저장소
type Store struct {
	db *gorm.DB
}

// NewStore 새로운 이력 저장소를 생성합니다.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert 가격 관측치 한 건을 저장합니다.
func (s *Store) Insert(ctx context.Context, obs *PriceObservation) error {
	if err := s.db.WithContext(ctx).Create(obs).Error; err != nil {
		return apperrors.Wrap(err, apperrors.System, "가격 이력 저장에 실패했습니다")
	}
	return nil
}

// HasRecentDuplicate 동일한 문맥 키에서 최근 24시간 내에 같은 가격(오차 1e-6 미만)이
// 이미 기록되었는지 확인합니다. 중복된 관측치의 재기록을 방지하기 위해 사용됩니다.
func (s *Store) HasRecentDuplicate(ctx context.Context, key ObservationKey, priceTaxIncl decimal.Decimal, now time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&PriceObservation{}).
		Where("shop_id = ? AND product_id = ? AND variant_id = ? AND currency_id = ? AND country_id = ? AND group_id = ?",
			key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID).
		Where("ABS(price_tax_incl - ?) < "+duplicateTolerance, priceTaxIncl).
		Where("captured_at >= ?", now.Add(-duplicateWindow)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.System, "가격 이력 중복 확인에 실패했습니다")
	}
	return count > 0, nil
}

// LowestDistinct 지정된 문맥 키의 이력에서 기준 시각 이후에 관측된 서로 다른 가격을
// 오름차순으로 최대 2개 반환합니다. 첫 번째 값이 기간 내 최저가, 두 번째 값이 차저가입니다.
// taxIncl이 false이면 세금 제외 가격을 기준으로 조회합니다.
func (s *Store) LowestDistinct(ctx context.Context, key ObservationKey, since time.Time, taxIncl bool) ([]decimal.Decimal, error) {
	column := priceColumnTaxIncl
	if !taxIncl {
		column = priceColumnTaxExcl
	}

	var prices []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&PriceObservation{}).
		Where("shop_id = ? AND product_id = ? AND variant_id = ? AND currency_id = ? AND country_id = ? AND group_id = ?",
			key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID).
		Where("captured_at >= ?", since).
		Distinct(column).
		Order(column + " ASC").
		Limit(2).
		Pluck(column, &prices).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "기간 내 최저가 조회에 실패했습니다")
	}
	return prices, nil
}

// List 조회 조건에 맞는 이력을 최신순으로 페이지 단위로 반환합니다.
// 반환값은 (이력 목록, 조건에 맞는 전체 건수, 에러)입니다.
func (s *Store) List(ctx context.Context, filter Filter) ([]PriceObservation, int64, error) {
	query := s.db.WithContext(ctx).Model(&PriceObservation{})

	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.System, "가격 이력 건수 조회에 실패했습니다")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}

	var observations []PriceObservation
	if err := query.
		Order("captured_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&observations).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.System, "가격 이력 조회에 실패했습니다")
	}

	return observations, total, nil
}

// DeleteByIDs 지정된 ID 목록에 해당하는 이력을 삭제하고 실제 삭제된 건수를 반환합니다.
// 존재하지 않는 ID는 무시됩니다.
func (s *Store) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Delete(&PriceObservation{}, ids)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, apperrors.System, "가격 이력 삭제에 실패했습니다")
	}
	return result.RowsAffected, nil
}

// PurgeBefore 기준 시각보다 오래된 이력을 모두 삭제하고 삭제된 건수를 반환합니다.
// 삭제 대상이 없어도 에러가 아니므로 반복 호출에 안전합니다.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("captured_at < ?", cutoff).
		Delete(&PriceObservation{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, apperrors.System, "보존 기간이 지난 가격 이력 삭제에 실패했습니다")
	}
	return result.RowsAffected, nil
}

// ForEachBatch 조회 조건에 맞는 이력을 batchSize 단위로 나누어 fn에 전달합니다.
// CSV 내려받기처럼 전체 이력을 순회해야 하는 경우에 사용합니다.
func (s *Store) ForEachBatch(ctx context.Context, filter Filter, batchSize int, fn func([]PriceObservation) error) error {
	query := s.db.WithContext(ctx).Model(&PriceObservation{})

	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.ShopID > 0 {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.VariantID != nil {
		query = query.Where("variant_id = ?", *filter.VariantID)
	}

	// FindInBatches는 기본 키 오름차순으로 순회하므로 별도의 정렬 조건을 지정하지 않는다.
	var batch []PriceObservation
	err := query.FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "가격 이력 일괄 조회에 실패했습니다")
	}
	return nil
}
