package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/darkkaiser/omnibus-server/internal/service/api/v1/model/request"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ListHistoryHandler Tests
// =============================================================================

// TestListHistoryHandler는 가격 관측 이력 조회 핸들러를 검증합니다.
//
// 검증 범위:
//   - 쿼리 파라미터의 필터 변환 (product_id, shop_id, variant_id, 페이지네이션)
//   - variant_id=0(상품 본체)의 유효 조건 처리
//   - 잘못된 파라미터의 400 처리
//   - 저장소 오류의 500 처리
func TestListHistoryHandler(t *testing.T) {
	t.Run("성공: 필터 없이 전체 조회", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.historyStore.listItems = []history.PriceObservation{
			{ID: 1, ProductID: 10, PriceTaxIncl: decimal.NewFromInt(100)},
		}
		mocks.historyStore.listTotal = 1

		rec, c := createTestRequest(t, http.MethodGet, "/api/v1/history", nil)

		require.NoError(t, handler.ListHistoryHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, mocks.historyStore.listCalled)
		assert.Equal(t, history.Filter{}, mocks.historyStore.lastFilter)

		var resp ListHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.ResultCode)
		assert.Equal(t, int64(1), resp.Total)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("성공: 조회 조건과 페이지네이션 전달", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet,
			"/api/v1/history?product_id=10&shop_id=2&page=3&per_page=20", nil)

		require.NoError(t, handler.ListHistoryHandler(c))

		filter := mocks.historyStore.lastFilter
		assert.Equal(t, uint(10), filter.ProductID)
		assert.Equal(t, uint(2), filter.ShopID)
		assert.Nil(t, filter.VariantID, "variant_id 생략 시 필터에 포함되지 않아야 합니다")
		assert.Equal(t, 3, filter.Page)
		assert.Equal(t, 20, filter.PerPage)
	})

	t.Run("성공: variant_id=0은 상품 본체 조회 조건", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history?variant_id=0", nil)

		require.NoError(t, handler.ListHistoryHandler(c))

		require.NotNil(t, mocks.historyStore.lastFilter.VariantID)
		assert.Equal(t, uint(0), *mocks.historyStore.lastFilter.VariantID)
	})

	t.Run("실패: product_id가 숫자가 아니면 400", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history?product_id=abc", nil)

		requireHTTPError(t, handler.ListHistoryHandler(c), http.StatusBadRequest)
		assert.False(t, mocks.historyStore.listCalled)
	})

	t.Run("실패: page가 음수이면 400", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history?page=-1", nil)

		requireHTTPError(t, handler.ListHistoryHandler(c), http.StatusBadRequest)
	})

	t.Run("실패: 저장소 오류 시 500", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.historyStore.listErr = assert.AnError

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history", nil)

		requireHTTPError(t, handler.ListHistoryHandler(c), http.StatusInternalServerError)
	})
}

// =============================================================================
// DeleteHistoryHandler Tests
// =============================================================================

// TestDeleteHistoryHandler는 가격 관측 이력 일괄 삭제 핸들러를 검증합니다.
func TestDeleteHistoryHandler(t *testing.T) {
	t.Run("성공: 지정된 ID 목록 삭제", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.historyStore.deleted = 2

		rec, c := createTestRequest(t, http.MethodDelete, "/api/v1/history", request.DeleteHistoryRequest{
			ApplicationID: "test-app",
			IDs:           []uint{1, 2, 999},
		})

		require.NoError(t, handler.DeleteHistoryHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, mocks.historyStore.deleteCalled)
		assert.Equal(t, []uint{1, 2, 999}, mocks.historyStore.lastIDs)

		var resp DeleteHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.ResultCode)
		assert.Equal(t, int64(2), resp.Deleted, "존재하지 않는 ID는 무시되고 실제 삭제 수가 반환되어야 합니다")
	})

	t.Run("실패: 잘못된 JSON 형식", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodDelete, "/api/v1/history", "invalid-json")

		requireHTTPError(t, handler.DeleteHistoryHandler(c), http.StatusBadRequest)
		assert.False(t, mocks.historyStore.deleteCalled)
	})

	t.Run("실패: ids 누락", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodDelete, "/api/v1/history",
			request.DeleteHistoryRequest{ApplicationID: "test-app"})

		requireHTTPError(t, handler.DeleteHistoryHandler(c), http.StatusBadRequest)
		assert.False(t, mocks.historyStore.deleteCalled)
	})

	t.Run("실패: ids가 빈 배열", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodDelete, "/api/v1/history",
			request.DeleteHistoryRequest{ApplicationID: "test-app", IDs: []uint{}})

		requireHTTPError(t, handler.DeleteHistoryHandler(c), http.StatusBadRequest)
	})

	t.Run("실패: ids에 0 포함", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodDelete, "/api/v1/history",
			request.DeleteHistoryRequest{ApplicationID: "test-app", IDs: []uint{1, 0}})

		requireHTTPError(t, handler.DeleteHistoryHandler(c), http.StatusBadRequest)
	})

	t.Run("실패: 저장소 오류 시 500", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.historyStore.deleteErr = assert.AnError

		_, c := createTestRequest(t, http.MethodDelete, "/api/v1/history",
			request.DeleteHistoryRequest{ApplicationID: "test-app", IDs: []uint{1}})

		requireHTTPError(t, handler.DeleteHistoryHandler(c), http.StatusInternalServerError)
	})
}

// =============================================================================
// ExportHistoryHandler Tests
// =============================================================================

// TestExportHistoryHandler는 가격 관측 이력 CSV 내보내기 핸들러를 검증합니다.
func TestExportHistoryHandler(t *testing.T) {
	t.Run("성공: CSV 스트리밍", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		capturedAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
		mocks.historyStore.batches = [][]history.PriceObservation{
			{
				{
					ID:           1,
					ShopID:       1,
					ProductID:    10,
					VariantID:    0,
					CurrencyID:   1,
					CountryID:    1,
					GroupID:      1,
					PriceTaxExcl: decimal.RequireFromString("81.3"),
					PriceTaxIncl: decimal.RequireFromString("99.99"),
					CapturedAt:   capturedAt,
				},
			},
		}

		rec, c := createTestRequest(t, http.MethodGet, "/api/v1/history/export?product_id=10", nil)

		require.NoError(t, handler.ExportHistoryHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "price_history_")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2, "헤더 행과 데이터 행이 출력되어야 합니다")
		assert.Equal(t,
			"id,shop_id,product_id,variant_id,currency_id,country_id,group_id,price_tax_excl,price_tax_incl,captured_at",
			lines[0])
		assert.Equal(t, "1,1,10,0,1,1,1,81.3,99.99,2026-03-15T09:30:00Z", lines[1])
	})

	t.Run("성공: 내보내기는 페이지네이션을 무시", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history/export?page=3&per_page=20", nil)

		require.NoError(t, handler.ExportHistoryHandler(c))

		assert.Equal(t, 0, mocks.historyStore.lastFilter.Page)
		assert.Equal(t, 0, mocks.historyStore.lastFilter.PerPage)
	})

	t.Run("성공: 조회 중 오류가 발생해도 응답은 이미 커밋된 상태", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.historyStore.batchErr = assert.AnError

		rec, c := createTestRequest(t, http.MethodGet, "/api/v1/history/export", nil)

		// 헤더가 이미 전송되었으므로 에러를 반환하지 않는다.
		require.NoError(t, handler.ExportHistoryHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("실패: 잘못된 쿼리 파라미터는 400", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodGet, "/api/v1/history/export?shop_id=abc", nil)

		requireHTTPError(t, handler.ExportHistoryHandler(c), http.StatusBadRequest)
	})
}
