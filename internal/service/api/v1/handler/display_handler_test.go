package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/darkkaiser/omnibus-server/internal/pricing"
	"github.com/darkkaiser/omnibus-server/internal/service/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderRequestBody 유효한 렌더링 요청 본문을 반환합니다.
func renderRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"application_id": "test-app",
		"product":        map[string]interface{}{"id_product": 42, "id_product_attribute": 7},
		"view":           "product",
		"shop_id":        1,
		"currency_id":    2,
		"country_id":     3,
		"group_id":       4,
		"locale":         "pl",
	}
}

// =============================================================================
// RenderDisplayHandler Tests
// =============================================================================

// TestRenderDisplayHandler는 최저가 정보 렌더링 핸들러를 검증합니다.
//
// 검증 범위:
//   - 상품 데이터의 정규화 (상품 객체, 숫자 ID)
//   - 판매 문맥과 로케일 전달
//   - 표시 조건 미충족 시에도 200 응답 (should_display=false)
//   - 필수 필드 및 view 값 검증
func TestRenderDisplayHandler(t *testing.T) {
	t.Run("성공: 상품 객체 형태의 요청", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.renderer.result = display.RenderResult{
			ShouldDisplay: true,
			HTML:          `<div class="omnibus-price">99,99 zł</div>`,
			Price:         "99,99 zł",
			Percent:       -15,
		}

		rec, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", renderRequestBody())

		require.NoError(t, handler.RenderDisplayHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, mocks.renderer.called)
		assert.Equal(t, display.ProductRef{ProductID: 42, VariantID: 7}, mocks.renderer.lastRef)
		assert.Equal(t, display.ViewProduct, mocks.renderer.lastView)
		assert.Equal(t, pricing.Context{ShopID: 1, CurrencyID: 2, CountryID: 3, GroupID: 4}, mocks.renderer.lastPctx)
		assert.Equal(t, "pl", mocks.renderer.lastLocale)
		assert.NotNil(t, mocks.renderer.lastCache, "요청 범위 캐시가 렌더러에 전달되어야 합니다")

		var result display.RenderResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.ShouldDisplay)
		assert.Equal(t, "99,99 zł", result.Price)
		assert.Equal(t, -15, result.Percent)
	})

	t.Run("성공: 숫자 ID 형태의 상품 데이터", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		body := renderRequestBody()
		body["product"] = 42

		_, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", body)

		require.NoError(t, handler.RenderDisplayHandler(c))
		assert.Equal(t, display.ProductRef{ProductID: 42}, mocks.renderer.lastRef)
	})

	t.Run("성공: 표시 조건 미충족 시에도 200 응답", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.renderer.result = display.RenderResult{ShouldDisplay: false}

		rec, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", renderRequestBody())

		require.NoError(t, handler.RenderDisplayHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var result display.RenderResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.ShouldDisplay)
		assert.Empty(t, result.HTML)
	})

	t.Run("실패: 잘못된 JSON 형식", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", "invalid-json")

		requireHTTPError(t, handler.RenderDisplayHandler(c), http.StatusBadRequest)
		assert.False(t, mocks.renderer.called)
	})

	t.Run("실패: product 누락", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		body := renderRequestBody()
		delete(body, "product")

		_, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", body)

		requireHTTPError(t, handler.RenderDisplayHandler(c), http.StatusBadRequest)
	})

	t.Run("실패: view가 허용되지 않은 값", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		body := renderRequestBody()
		body["view"] = "cart"

		_, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", body)

		requireHTTPError(t, handler.RenderDisplayHandler(c), http.StatusBadRequest)
	})

	t.Run("실패: 판매 문맥 누락", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		body := renderRequestBody()
		delete(body, "currency_id")

		_, c := createTestRequest(t, http.MethodPost, "/api/v1/display/render", body)

		requireHTTPError(t, handler.RenderDisplayHandler(c), http.StatusBadRequest)
	})
}

// =============================================================================
// DisplayHeaderHandler Tests
// =============================================================================

// TestDisplayHeaderHandler는 페이지 헤더용 스타일 조각 핸들러를 검증합니다.
func TestDisplayHeaderHandler(t *testing.T) {
	t.Run("성공: 사용자 정의 CSS 반환", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.renderer.header = "<style>.omnibus-price { color: red; }</style>"

		rec, c := createTestRequest(t, http.MethodGet, "/api/v1/display/header", nil)

		require.NoError(t, handler.DisplayHeaderHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HeaderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.ResultCode)
		assert.Contains(t, resp.HTML, ".omnibus-price")
	})

	t.Run("성공: CSS 미설정 시 빈 문자열", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.renderer.header = ""

		rec, c := createTestRequest(t, http.MethodGet, "/api/v1/display/header", nil)

		require.NoError(t, handler.DisplayHeaderHandler(c))

		var resp HeaderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.HTML)
	})
}
