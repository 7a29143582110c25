// Package v1 관리용 API의 v1 버전 라우트를 정의하고 설정합니다.
//
// 이 패키지는 /api/v1 경로 하위의 모든 엔드포인트를 관리합니다.
//
// 주요 엔드포인트:
//   - GET    /api/v1/history               - 가격 관측 이력 조회
//   - DELETE /api/v1/history               - 가격 관측 이력 일괄 삭제
//   - GET    /api/v1/history/export        - 가격 관측 이력 CSV 내보내기
//   - POST   /api/v1/products/:id/snapshot - 단일 상품 가격 즉시 수집
//   - POST   /api/v1/display/render        - 최저가 정보 HTML 조각 생성
//   - GET    /api/v1/display/header        - 사용자 정의 CSS 스타일 조각
//
// 모든 엔드포인트는 애플리케이션 인증(app_key)을 요구하며,
// 인증 미들웨어를 통해 요청을 검증합니다.
package v1

import (
	"github.com/darkkaiser/omnibus-server/internal/service/api/auth"
	"github.com/darkkaiser/omnibus-server/internal/service/api/middleware"
	"github.com/darkkaiser/omnibus-server/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes Echo 인스턴스에 v1 API 라우트를 설정합니다.
//
// /api/v1 그룹을 생성하고 인증 미들웨어를 적용한 후 엔드포인트를 등록합니다.
// 본문이 있는 엔드포인트에는 Content-Type 검증을 추가로 적용합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, authenticator *auth.Authenticator) {
	v1Group := e.Group("/api/v1")

	authMiddleware := middleware.RequireAuthentication(authenticator)
	jsonOnly := middleware.ValidateContentType(echo.MIMEApplicationJSON)

	// 가격 관측 이력
	v1Group.GET("/history", h.ListHistoryHandler, authMiddleware)
	v1Group.DELETE("/history", h.DeleteHistoryHandler, authMiddleware, jsonOnly)
	v1Group.GET("/history/export", h.ExportHistoryHandler, authMiddleware)

	// 상품 가격 즉시 수집
	v1Group.POST("/products/:id/snapshot", h.SnapshotHandler, authMiddleware)

	// 최저가 정보 표시
	v1Group.POST("/display/render", h.RenderDisplayHandler, authMiddleware, jsonOnly)
	v1Group.GET("/display/header", h.DisplayHeaderHandler, authMiddleware)
}
