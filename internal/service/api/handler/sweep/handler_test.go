package sweep

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

const testCronToken = "0123456789abcdef"

// mockSweeper 배치 실행기 Mock
type mockSweeper struct {
	called    bool
	lastLimit int

	recorded int
	purged   int64
	err      error
}

func (m *mockSweeper) Sweep(_ context.Context, limit int) (int, int64, error) {
	m.called = true
	m.lastLimit = limit
	return m.recorded, m.purged, m.err
}

// createTestRequest 테스트용 HTTP 요청을 생성합니다.
func createTestRequest(t *testing.T, url string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, c
}

func testSweepConfig(batchLimit string) *config.SweepConfig {
	return &config.SweepConfig{
		CronToken:  testCronToken,
		BatchLimit: batchLimit,
	}
}

// =============================================================================
// NewHandler Tests
// =============================================================================

func TestNewHandler(t *testing.T) {
	t.Run("성공: 정상적인 의존성 주입", func(t *testing.T) {
		h := NewHandler(testSweepConfig("50"), &mockSweeper{})
		assert.NotNil(t, h)
	})

	t.Run("패닉: SweepConfig 누락", func(t *testing.T) {
		assert.PanicsWithValue(t, "SweepConfig는 필수입니다", func() {
			NewHandler(nil, &mockSweeper{})
		})
	})

	t.Run("패닉: Sweeper 누락", func(t *testing.T) {
		assert.PanicsWithValue(t, "Sweeper는 필수입니다", func() {
			NewHandler(testSweepConfig("50"), nil)
		})
	})
}

// =============================================================================
// RunHandler Tests
// =============================================================================

// TestRunHandler는 외부 Cron 구동 엔드포인트를 검증합니다.
//
// 검증 범위:
//   - 공유 토큰 인증 (누락/불일치 시 403, 배치 미실행)
//   - limit 파라미터 해석 (생략/정수/"all"/잘못된 값)
//   - 배치 실행 결과 응답 및 실패 시 500 처리
func TestRunHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		batchLimit     string
		sweeper        *mockSweeper
		expectedStatus int
		expectedLimit  int
		expectCalled   bool
	}{
		{
			name:           "성공: limit 생략 시 설정 파일의 배치 크기 사용",
			url:            "/cron?token=" + testCronToken,
			batchLimit:     "50",
			sweeper:        &mockSweeper{recorded: 12, purged: 3},
			expectedStatus: http.StatusOK,
			expectedLimit:  50,
			expectCalled:   true,
		},
		{
			name:           "성공: limit 정수 지정",
			url:            "/cron?token=" + testCronToken + "&limit=7",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusOK,
			expectedLimit:  7,
			expectCalled:   true,
		},
		{
			name:           "성공: limit=all은 전체 처리(0)로 해석",
			url:            "/cron?token=" + testCronToken + "&limit=all",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusOK,
			expectedLimit:  0,
			expectCalled:   true,
		},
		{
			name:           "성공: limit=ALL 대소문자 무시",
			url:            "/cron?token=" + testCronToken + "&limit=ALL",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusOK,
			expectedLimit:  0,
			expectCalled:   true,
		},
		{
			name:           "실패: 토큰 누락 시 403",
			url:            "/cron",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusForbidden,
			expectCalled:   false,
		},
		{
			name:           "실패: 토큰 불일치 시 403",
			url:            "/cron?token=wrong-token-value",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusForbidden,
			expectCalled:   false,
		},
		{
			name:           "실패: limit이 0이면 400",
			url:            "/cron?token=" + testCronToken + "&limit=0",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusBadRequest,
			expectCalled:   false,
		},
		{
			name:           "실패: limit이 숫자가 아니면 400",
			url:            "/cron?token=" + testCronToken + "&limit=abc",
			batchLimit:     "50",
			sweeper:        &mockSweeper{},
			expectedStatus: http.StatusBadRequest,
			expectCalled:   false,
		},
		{
			name:           "실패: 배치 실행 오류 시 500",
			url:            "/cron?token=" + testCronToken,
			batchLimit:     "50",
			sweeper:        &mockSweeper{err: assert.AnError},
			expectedStatus: http.StatusInternalServerError,
			expectedLimit:  50,
			expectCalled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(testSweepConfig(tt.batchLimit), tt.sweeper)
			rec, c := createTestRequest(t, tt.url)

			err := handler.RunHandler(c)

			if tt.expectedStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Error(t, err)
				httpErr, ok := err.(*echo.HTTPError)
				require.True(t, ok, "에러는 *echo.HTTPError 타입이어야 합니다")
				assert.Equal(t, tt.expectedStatus, httpErr.Code)
			}

			assert.Equal(t, tt.expectCalled, tt.sweeper.called, "배치 실행 여부가 기대와 다릅니다")
			if tt.expectCalled {
				assert.Equal(t, tt.expectedLimit, tt.sweeper.lastLimit)
			}
		})
	}
}

// TestRunHandler_ResponseBody는 정상 실행 시 응답 본문을 검증합니다.
func TestRunHandler_ResponseBody(t *testing.T) {
	sweeper := &mockSweeper{recorded: 42, purged: 17}
	handler := NewHandler(testSweepConfig("50"), sweeper)
	rec, c := createTestRequest(t, "/cron?token="+testCronToken)

	require.NoError(t, handler.RunHandler(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 42, resp.Recorded)
	assert.Equal(t, int64(17), resp.Purged)
}
