package api

import (
	"github.com/darkkaiser/omnibus-server/internal/service/api/handler/sweep"
	"github.com/darkkaiser/omnibus-server/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes API 서비스의 전역 라우트를 등록합니다.
//
// 이 함수는 다음과 같은 공통 엔드포인트들을 설정합니다:
//   - 시스템 엔드포인트: 서비스 상태 확인(/health) 및 버전 정보(/version) (인증 불필요)
//   - 배치 구동 엔드포인트: 외부 Cron에서 호출하는 /cron (공유 토큰 인증)
func RegisterRoutes(e *echo.Echo, systemHandler *system.Handler, sweepHandler *sweep.Handler) {
	registerSystemRoutes(e, systemHandler)
	registerSweepRoutes(e, sweepHandler)
}

func registerSystemRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
}

func registerSweepRoutes(e *echo.Echo, h *sweep.Handler) {
	e.GET("/cron", h.RunHandler)
}
