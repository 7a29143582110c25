// Package system 시스템 엔드포인트 핸들러를 제공합니다.
//
// 헬스체크, 버전 정보 등 인증이 필요 없는 시스템 수준의 API를 처리합니다.
package system

import (
	"context"
	"net/http"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/pkg/version"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 시스템 핸들러 로그의 컴포넌트 이름
const component = "api.handler.system"

// 헬스체크 상태 값
const (
	healthStatusHealthy   = "healthy"
	healthStatusUnhealthy = "unhealthy"
)

// dependencyCheckTimeout 외부 의존성 상태 확인의 최대 대기 시간
const dependencyCheckTimeout = 3 * time.Second

// DependencyChecker 외부 의존성(데이터베이스 등)의 상태를 확인하는 함수 타입입니다.
// 정상이면 nil을 반환합니다.
type DependencyChecker func(ctx context.Context) error

// DependencyStatus 외부 의존성 한 개의 상태입니다.
type DependencyStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse 헬스체크 응답입니다.
type HealthResponse struct {
	Status       string                      `json:"status"`
	Uptime       int64                       `json:"uptime"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// VersionResponse 버전 정보 응답입니다.
type VersionResponse struct {
	Version     string `json:"version"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
}

// Handler 시스템 엔드포인트 핸들러 (헬스체크, 버전 정보)
type Handler struct {
	// dependencies 이름별 외부 의존성 상태 확인 함수 목록
	dependencies map[string]DependencyChecker

	buildInfo version.Info

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(buildInfo version.Info, dependencies map[string]DependencyChecker) *Handler {
	return &Handler{
		dependencies: dependencies,

		buildInfo: buildInfo,

		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler 서버와 외부 의존성의 상태를 확인합니다.
// 인증 없이 호출 가능하며, 모니터링 시스템에서 사용됩니다.
//
// 응답 필드:
//   - status: 전체 서버 상태 (healthy, unhealthy)
//   - uptime: 서버 가동 시간(초)
//   - dependencies: 외부 의존성별 상태 (database 등)
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(component, applog.Fields{
		"endpoint":  "/health",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug("헬스체크 요청")

	uptime := int64(time.Since(h.serverStartTime).Seconds())

	ctx, cancel := context.WithTimeout(c.Request().Context(), dependencyCheckTimeout)
	defer cancel()

	deps := make(map[string]DependencyStatus, len(h.dependencies))
	serverStatus := healthStatusHealthy

	for name, check := range h.dependencies {
		if err := check(ctx); err != nil {
			deps[name] = DependencyStatus{
				Status:  healthStatusUnhealthy,
				Message: err.Error(),
			}

			// 하나라도 unhealthy면 전체 상태를 unhealthy로 설정
			serverStatus = healthStatusUnhealthy
		} else {
			deps[name] = DependencyStatus{
				Status:  healthStatusHealthy,
				Message: "정상",
			}
		}
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:       serverStatus,
		Uptime:       uptime,
		Dependencies: deps,
	})
}

// VersionHandler 서버의 버전, 빌드 날짜, 빌드 번호, Go 버전을 반환합니다.
// 디버깅 및 배포 버전 확인에 사용됩니다.
func (h *Handler) VersionHandler(c echo.Context) error {
	applog.WithComponentAndFields(component, applog.Fields{
		"endpoint":  "/version",
		"method":    c.Request().Method,
		"remote_ip": c.RealIP(),
	}).Debug("버전 정보 요청")

	return c.JSON(http.StatusOK, VersionResponse{
		Version:     h.buildInfo.Version,
		BuildDate:   h.buildInfo.BuildDate,
		BuildNumber: h.buildInfo.BuildNumber,
		GoVersion:   h.buildInfo.GoVersion,
	})
}
