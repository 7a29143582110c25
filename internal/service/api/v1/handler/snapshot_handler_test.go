package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSnapshotRequest 경로 파라미터(:id)가 설정된 테스트 요청을 생성합니다.
func createSnapshotRequest(t *testing.T, id string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/products/:id/snapshot")
	c.SetParamNames("id")
	c.SetParamValues(id)

	return rec, c
}

// TestSnapshotHandler는 상품 가격 수집 핸들러를 검증합니다.
//
// 검증 범위:
//   - 경로 파라미터의 상품 ID 검증 (0, 음수, 숫자가 아닌 값)
//   - 수집 결과 응답
//   - 수집기 오류의 500 처리
func TestSnapshotHandler(t *testing.T) {
	t.Run("성공: 상품 가격 수집", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.snapshotter.recorded = 3

		rec, c := createSnapshotRequest(t, "42")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, mocks.snapshotter.called)
		assert.Equal(t, uint(42), mocks.snapshotter.lastProductID)

		var resp SnapshotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.ResultCode)
		assert.Equal(t, 3, resp.Recorded)
	})

	t.Run("성공: 수집 대상 가격이 없으면 recorded=0", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.snapshotter.recorded = 0

		rec, c := createSnapshotRequest(t, "42")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SnapshotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Recorded)
	})

	invalidIDs := []struct {
		name string
		id   string
	}{
		{"실패: 상품 ID가 0이면 400", "0"},
		{"실패: 상품 ID가 음수이면 400", "-1"},
		{"실패: 상품 ID가 숫자가 아니면 400", "abc"},
		{"실패: 상품 ID가 비어 있으면 400", ""},
	}
	for _, tt := range invalidIDs {
		t.Run(tt.name, func(t *testing.T) {
			handler, mocks := setupTestHandler(t)

			_, c := createSnapshotRequest(t, tt.id)

			requireHTTPError(t, handler.SnapshotHandler(c), http.StatusBadRequest)
			assert.False(t, mocks.snapshotter.called, "잘못된 ID로는 수집이 실행되지 않아야 합니다")
		})
	}

	t.Run("실패: 수집기 오류 시 500", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)
		mocks.snapshotter.err = assert.AnError

		_, c := createSnapshotRequest(t, "42")

		requireHTTPError(t, handler.SnapshotHandler(c), http.StatusInternalServerError)
	})

	t.Run("실패: trigger 값이 올바르지 않으면 400", func(t *testing.T) {
		handler, mocks := setupTestHandler(t)

		_, c := createSnapshotRequest(t, "42")
		c.QueryParams().Set("trigger", "cron")

		requireHTTPError(t, handler.SnapshotHandler(c), http.StatusBadRequest)
		assert.False(t, mocks.snapshotter.called)
	})
}

// TestSnapshotHandler_LoggingMode는 훅 트리거 수집이 기록 방식 설정을 따르는지 검증합니다.
//
// 직접 호출(trigger 생략 또는 manual)은 설정과 무관하게 항상 수집하고,
// 훅 트리거(trigger=hook)는 instant 방식일 때만 수집합니다.
func TestSnapshotHandler_LoggingMode(t *testing.T) {
	newHandlerWithMode := func(mode string) (*Handler, *mockSnapshotter) {
		snapshotter := &mockSnapshotter{recorded: 3}
		return NewHandler(&mockHistoryStore{}, snapshotter, &mockRenderer{}, mode), snapshotter
	}

	t.Run("성공: instant 방식에서는 훅 트리거도 수집한다", func(t *testing.T) {
		handler, snapshotter := newHandlerWithMode(config.LoggingModeInstant)

		rec, c := createSnapshotRequest(t, "42")
		c.QueryParams().Set("trigger", "hook")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, snapshotter.called)

		var resp SnapshotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Recorded)
		assert.False(t, resp.Skipped)
	})

	t.Run("성공: cron 방식에서는 훅 트리거 수집을 건너뛴다", func(t *testing.T) {
		handler, snapshotter := newHandlerWithMode(config.LoggingModeCron)

		rec, c := createSnapshotRequest(t, "42")
		c.QueryParams().Set("trigger", "hook")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.False(t, snapshotter.called, "cron 방식에서 훅 트리거는 수집을 실행하지 않아야 합니다")

		var resp SnapshotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Recorded)
		assert.True(t, resp.Skipped)
	})

	t.Run("성공: cron 방식이라도 직접 호출은 항상 수집한다", func(t *testing.T) {
		handler, snapshotter := newHandlerWithMode(config.LoggingModeCron)

		rec, c := createSnapshotRequest(t, "42")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)

		assert.True(t, snapshotter.called)

		var resp SnapshotResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Recorded)
		assert.False(t, resp.Skipped)
	})

	t.Run("성공: trigger=manual 직접 호출도 항상 수집한다", func(t *testing.T) {
		handler, snapshotter := newHandlerWithMode(config.LoggingModeCron)

		rec, c := createSnapshotRequest(t, "42")
		c.QueryParams().Set("trigger", "manual")

		require.NoError(t, handler.SnapshotHandler(c))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, snapshotter.called)
	})
}
