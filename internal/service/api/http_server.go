package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/omnibus-server/internal/service/api/middleware"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTP 서버 동작 기본값
const (
	// defaultReadTimeout 요청 본문 읽기 제한
	defaultReadTimeout = 30 * time.Second

	// defaultReadHeaderTimeout 요청 헤더 읽기 제한
	defaultReadHeaderTimeout = 10 * time.Second

	// defaultWriteTimeout 응답 쓰기 제한
	defaultWriteTimeout = 60 * time.Second

	// defaultIdleTimeout Keep-Alive 연결 유휴 제한
	defaultIdleTimeout = 90 * time.Second

	// defaultRequestTimeout HTTP 요청 처리의 기본 타임아웃 시간
	// 요청 처리가 이 시간을 초과하면 자동으로 취소되어 서버 리소스를 보호합니다.
	defaultRequestTimeout = 60 * time.Second

	// defaultRateLimitPerSecond IP별 초당 허용 요청 수
	defaultRateLimitPerSecond = 20

	// defaultRateLimitBurst IP별 버스트 허용량
	defaultRateLimitBurst = 40

	// defaultMaxBodySize 요청 본문 최대 크기
	defaultMaxBodySize = "2M"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정을 정의합니다.
type HTTPServerConfig struct {
	// Debug Echo 프레임워크의 디버그 모드 활성화 여부
	Debug bool

	// AllowOrigins CORS에서 허용할 Origin 목록
	AllowOrigins []string

	// RequestTimeout 각 HTTP 요청의 최대 처리 시간 (기본값: 60초)
	RequestTimeout time.Duration
}

// NewHTTPServer 설정된 미들웨어를 포함한 Echo 인스턴스를 생성합니다.
//
// 미들웨어는 다음 순서로 적용됩니다 (순서가 중요합니다):
//
//  1. PanicRecovery - 패닉 복구 및 로깅. 가장 먼저 적용되어야 다른 미들웨어의 panic도 복구할 수 있습니다.
//  2. RequestID - 각 요청에 고유한 ID를 부여합니다 (X-Request-ID 헤더). 로깅 미들웨어보다 먼저 적용되어야 로그에 request_id가 포함됩니다.
//  3. ServerHeader 제거 - 응답 헤더에서 Server 필드를 삭제하여 기술 스택 노출을 방지합니다.
//  4. HTTPLogger - 모든 HTTP 요청과 응답 정보를 구조화된 로그로 기록합니다. 민감 정보(app_key 등)는 자동으로 마스킹됩니다.
//  5. RateLimiting - IP 주소별 초당 요청 수를 제한합니다. 제한 초과 시 429 응답.
//  6. BodyLimit - 요청 본문 크기를 제한합니다 (기본 2MB, 초과 시 413 응답).
//  7. Timeout - 요청 처리 시간을 제한합니다 (기본 60초, 초과 시 503 응답).
//  8. CORS - 허용된 Origin에서의 크로스 도메인 요청을 처리합니다.
//  9. Secure - X-XSS-Protection, X-Content-Type-Options 등 보안 헤더를 추가합니다.
//
// 라우트 설정은 포함되지 않으며, 반환된 Echo 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true

	// 보안 및 리소스 관리를 위한 HTTP 서버 타임아웃 설정
	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	// Echo 프레임워크의 내부 로그를 애플리케이션 로거로 통합합니다.
	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}

	// 전역 HTTP 에러 핸들러 설정
	e.HTTPErrorHandler = httputil.ErrorHandler

	// 타임아웃 미설정 시 기본값(60초)을 적용하여 무한 대기를 방지합니다.
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	// 미들웨어 적용 (권장 순서)

	// 1. Panic 복구
	e.Use(appmiddleware.PanicRecovery())
	// 2. Request ID
	e.Use(middleware.RequestID())
	// 3. Server 헤더 제거 (보안 강화)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	// 4. HTTP 로깅 (RateLimit/Timeout 이전에 위치하여 429/503 에러도 기록)
	e.Use(appmiddleware.HTTPLogger())
	// 5. Rate Limiting
	e.Use(appmiddleware.RateLimiting(defaultRateLimitPerSecond, defaultRateLimitBurst))
	// 6. Body Limit (최대 2MB)
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	// 7. Timeout
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	}))
	// 8. CORS 설정
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
	// 9. 보안 헤더 (XSS Protection 등)
	e.Use(middleware.Secure())

	return e
}
