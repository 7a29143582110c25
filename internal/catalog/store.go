package catalog

import (
	"context"
	"errors"

	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"gorm.io/gorm"
)

// Store 카탈로그 정보를 데이터베이스에서 조회하는 저장소
type Store struct {
	db *gorm.DB
}

// NewStore 새로운 카탈로그 저장소를 생성합니다.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ProductByID 상품을 조회합니다. 존재하지 않으면 NotFound 에러를 반환합니다.
func (s *Store) ProductByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "상품(ID: %d)을 찾을 수 없습니다", id)
		}
		return nil, apperrors.Wrap(err, apperrors.System, "상품 조회에 실패했습니다")
	}
	return &p, nil
}

// VariantByID 상품 옵션을 조회합니다. 존재하지 않으면 NotFound 에러를 반환합니다.
func (s *Store) VariantByID(ctx context.Context, id uint) (*ProductVariant, error) {
	var v ProductVariant
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "상품 옵션(ID: %d)을 찾을 수 없습니다", id)
		}
		return nil, apperrors.Wrap(err, apperrors.System, "상품 옵션 조회에 실패했습니다")
	}
	return &v, nil
}

// VariantIDs 지정된 상품에 속한 모든 옵션 ID를 반환합니다. 옵션이 없으면 빈 슬라이스를 반환합니다.
func (s *Store) VariantIDs(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&ProductVariant{}).
		Where("product_id = ?", productID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "상품 옵션 목록 조회에 실패했습니다")
	}
	return ids, nil
}

// ActiveShops 활성화된 모든 상점을 반환합니다.
func (s *Store) ActiveShops(ctx context.Context) ([]Shop, error) {
	var shops []Shop
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&shops).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "상점 목록 조회에 실패했습니다")
	}
	return shops, nil
}

// ActiveCurrencies 활성화된 모든 통화를 반환합니다.
func (s *Store) ActiveCurrencies(ctx context.Context) ([]Currency, error) {
	var currencies []Currency
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&currencies).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "통화 목록 조회에 실패했습니다")
	}
	return currencies, nil
}

// CurrencyByID 통화를 조회합니다.
func (s *Store) CurrencyByID(ctx context.Context, id uint) (*Currency, error) {
	var c Currency
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "통화(ID: %d)를 찾을 수 없습니다", id)
		}
		return nil, apperrors.Wrap(err, apperrors.System, "통화 조회에 실패했습니다")
	}
	return &c, nil
}

// ActiveCountries 활성화된 모든 국가를 반환합니다.
func (s *Store) ActiveCountries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&countries).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "국가 목록 조회에 실패했습니다")
	}
	return countries, nil
}

// DefaultCountry 기본 배송 국가를 반환합니다. 지정된 기본 국가가 없으면 NotFound 에러를 반환합니다.
func (s *Store) DefaultCountry(ctx context.Context) (*Country, error) {
	var c Country
	if err := s.db.WithContext(ctx).Where("`default` = ?", true).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "기본 배송 국가가 설정되지 않았습니다")
		}
		return nil, apperrors.Wrap(err, apperrors.System, "기본 배송 국가 조회에 실패했습니다")
	}
	return &c, nil
}

// CountryByID 국가를 조회합니다.
func (s *Store) CountryByID(ctx context.Context, id uint) (*Country, error) {
	var c Country
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "국가(ID: %d)를 찾을 수 없습니다", id)
		}
		return nil, apperrors.Wrap(err, apperrors.System, "국가 조회에 실패했습니다")
	}
	return &c, nil
}

// Groups 모든 고객 그룹을 반환합니다.
func (s *Store) Groups(ctx context.Context) ([]CustomerGroup, error) {
	var groups []CustomerGroup
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "고객 그룹 목록 조회에 실패했습니다")
	}
	return groups, nil
}

// AnonymousGroups 비회원(게스트, 미식별) 고객 그룹을 반환합니다.
// 모든 그룹을 기록하지 않도록 설정된 경우, 이 그룹들만 이력 기록 대상이 됩니다.
func (s *Store) AnonymousGroups(ctx context.Context) ([]CustomerGroup, error) {
	var groups []CustomerGroup
	if err := s.db.WithContext(ctx).
		Where("guest = ? OR unidentified = ?", true, true).
		Order("id ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "비회원 고객 그룹 조회에 실패했습니다")
	}
	return groups, nil
}

// GroupByID 고객 그룹을 조회합니다.
func (s *Store) GroupByID(ctx context.Context, id uint) (*CustomerGroup, error) {
	var g CustomerGroup
	if err := s.db.WithContext(ctx).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.NotFound, "고객 그룹(ID: %d)을 찾을 수 없습니다", id)
		}
		return nil, apperrors.Wrap(err, apperrors.System, "고객 그룹 조회에 실패했습니다")
	}
	return &g, nil
}

// RulesForProduct 상품 또는 상품의 특정 옵션에 적용될 수 있는 모든 가격 규칙을 반환합니다.
// 범위 필드(variant_id 등)의 값 0은 모든 대상에 적용됨을 의미하므로 함께 조회합니다.
func (s *Store) RulesForProduct(ctx context.Context, productID, variantID uint) ([]PriceRule, error) {
	var rules []PriceRule
	if err := s.db.WithContext(ctx).
		Where("(product_id = ? OR product_id = 0) AND (variant_id = ? OR variant_id = 0)", productID, variantID).
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "가격 규칙 조회에 실패했습니다")
	}
	return rules, nil
}

// CountActiveProducts 활성화된 상품의 총 개수를 반환합니다.
func (s *Store) CountActiveProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Product{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.System, "상품 수 조회에 실패했습니다")
	}
	return count, nil
}

// ActiveProductIDs 활성화된 상품 ID를 offset부터 limit개 반환합니다.
// limit가 0 이하이면 전체 상품을 반환합니다.
func (s *Store) ActiveProductIDs(ctx context.Context, offset, limit int) ([]uint, error) {
	query := s.db.WithContext(ctx).Model(&Product{}).
		Where("active = ?", true).
		Order("id ASC")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "상품 ID 목록 조회에 실패했습니다")
	}
	return ids, nil
}
