package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// Test Helpers
// =============================================================================

// setupTestStore SQL Mock 위에서 동작하는 테스트용 저장소를 생성합니다.
// 실제 데이터베이스 없이 저장소가 생성하는 SQL 조건식과 바인딩 값을 검증합니다.
func setupTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return NewStore(db), mock
}

// testObservationKey 테스트에 사용하는 기본 문맥 키
func testObservationKey() ObservationKey {
	return ObservationKey{
		ShopID:     1,
		ProductID:  10,
		VariantID:  0,
		CurrencyID: 1,
		CountryID:  2,
		GroupID:    3,
	}
}

// =============================================================================
// HasRecentDuplicate Tests
// =============================================================================

// TestStore_HasRecentDuplicate는 중복 관측치 판정 질의를 검증합니다.
//
// 검증 범위:
//   - 문맥 키 전체와 가격 오차(1e-6 미만), 24시간 조회 기간이 조건식에 포함되는지
//   - 건수에 따른 참/거짓 판정
//   - 질의 오류의 전파
func TestStore_HasRecentDuplicate(t *testing.T) {
	key := testObservationKey()
	price := decimal.RequireFromString("99.99")
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

	duplicateQuery := `SELECT count\(\*\) FROM .price_observations. WHERE \(shop_id = \? AND product_id = \? AND variant_id = \? AND currency_id = \? AND country_id = \? AND group_id = \?\) AND ABS\(price_tax_incl - \?\) < 0.000001 AND captured_at >= \?`

	t.Run("성공: 24시간 내 동일 가격 이력이 있으면 true", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(duplicateQuery).
			WithArgs(key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID, price, now.Add(-24*time.Hour)).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

		dup, err := store.HasRecentDuplicate(context.Background(), key, price, now)

		require.NoError(t, err)
		assert.True(t, dup)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("성공: 동일 가격 이력이 없으면 false", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(duplicateQuery).
			WithArgs(key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID, price, now.Add(-24*time.Hour)).
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

		dup, err := store.HasRecentDuplicate(context.Background(), key, price, now)

		require.NoError(t, err)
		assert.False(t, dup)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("실패: 질의 오류는 호출자에게 전파된다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(duplicateQuery).WillReturnError(assert.AnError)

		dup, err := store.HasRecentDuplicate(context.Background(), key, price, now)

		require.Error(t, err)
		assert.False(t, dup)
	})
}

// =============================================================================
// LowestDistinct Tests
// =============================================================================

// TestStore_LowestDistinct는 기간 내 최저가 조회 질의를 검증합니다.
//
// 검증 범위:
//   - DISTINCT 오름차순 정렬과 최대 2건 제한
//   - taxIncl 플래그에 따른 기준 컬럼(세금 포함/제외) 선택
//   - 기준 시각이 조건식에 바인딩되는지
func TestStore_LowestDistinct(t *testing.T) {
	key := testObservationKey()
	since := time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC)

	t.Run("성공: 세금 포함 가격을 오름차순으로 최대 2건 조회한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(`SELECT DISTINCT .price_tax_incl. FROM .price_observations. WHERE \(shop_id = \? AND product_id = \? AND variant_id = \? AND currency_id = \? AND country_id = \? AND group_id = \?\) AND captured_at >= \? ORDER BY price_tax_incl ASC LIMIT \?`).
			WithArgs(key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID, since, 2).
			WillReturnRows(sqlmock.NewRows([]string{"price_tax_incl"}).AddRow("80.00").AddRow("90.50"))

		prices, err := store.LowestDistinct(context.Background(), key, since, true)

		require.NoError(t, err)
		require.Len(t, prices, 2)
		assert.True(t, prices[0].Equal(decimal.RequireFromString("80")))
		assert.True(t, prices[1].Equal(decimal.RequireFromString("90.5")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("성공: taxIncl이 false이면 세금 제외 가격을 기준으로 조회한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(`SELECT DISTINCT .price_tax_excl. FROM .price_observations. WHERE .*captured_at >= \?.*ORDER BY price_tax_excl ASC LIMIT \?`).
			WithArgs(key.ShopID, key.ProductID, key.VariantID, key.CurrencyID, key.CountryID, key.GroupID, since, 2).
			WillReturnRows(sqlmock.NewRows([]string{"price_tax_excl"}).AddRow("65.04"))

		prices, err := store.LowestDistinct(context.Background(), key, since, false)

		require.NoError(t, err)
		require.Len(t, prices, 1)
		assert.True(t, prices[0].Equal(decimal.RequireFromString("65.04")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("성공: 기간 내 이력이 없으면 빈 목록을 반환한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(`SELECT DISTINCT .price_tax_incl. FROM .price_observations.`).
			WillReturnRows(sqlmock.NewRows([]string{"price_tax_incl"}))

		prices, err := store.LowestDistinct(context.Background(), key, since, true)

		require.NoError(t, err)
		assert.Empty(t, prices)
	})

	t.Run("실패: 질의 오류는 호출자에게 전파된다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectQuery(`SELECT DISTINCT`).WillReturnError(assert.AnError)

		prices, err := store.LowestDistinct(context.Background(), key, since, true)

		require.Error(t, err)
		assert.Nil(t, prices)
	})
}

// =============================================================================
// PurgeBefore Tests
// =============================================================================

// TestStore_PurgeBefore는 보존 기간이 지난 이력의 일괄 삭제 질의를 검증합니다.
//
// 검증 범위:
//   - 기준 시각보다 오래된(captured_at < cutoff) 행만 삭제 대상이 되는지
//   - 삭제된 건수 반환
//   - 삭제 대상이 없어도 에러가 아닌지 (반복 호출 안전)
func TestStore_PurgeBefore(t *testing.T) {
	cutoff := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	purgeQuery := `DELETE FROM .price_observations. WHERE captured_at < \?`

	t.Run("성공: 기준 시각 이전 이력을 삭제하고 건수를 반환한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(purgeQuery).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		purged, err := store.PurgeBefore(context.Background(), cutoff)

		require.NoError(t, err)
		assert.Equal(t, int64(3), purged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("성공: 삭제 대상이 없으면 0건으로 정상 종료한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(purgeQuery).
			WithArgs(cutoff).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		purged, err := store.PurgeBefore(context.Background(), cutoff)

		require.NoError(t, err)
		assert.Equal(t, int64(0), purged)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("실패: 삭제 오류는 호출자에게 전파된다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(purgeQuery).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		purged, err := store.PurgeBefore(context.Background(), cutoff)

		require.Error(t, err)
		assert.Equal(t, int64(0), purged)
	})
}

// =============================================================================
// DeleteByIDs Tests
// =============================================================================

// TestStore_DeleteByIDs는 ID 목록 기반 삭제를 검증합니다.
func TestStore_DeleteByIDs(t *testing.T) {
	t.Run("성공: ID 목록에 해당하는 이력을 삭제한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM .price_observations. WHERE .price_observations...id. IN \(\?,\?,\?\)`).
			WithArgs(uint(1), uint(2), uint(999)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		deleted, err := store.DeleteByIDs(context.Background(), []uint{1, 2, 999})

		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("성공: 빈 ID 목록은 질의 없이 0건을 반환한다", func(t *testing.T) {
		store, mock := setupTestStore(t)

		deleted, err := store.DeleteByIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
