package httputil

import (
	"net/http"

	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 에러 핸들러 로그의 컴포넌트 이름
const component = "api.error_handler"

// 클라이언트에게 반환되는 표준 에러 메시지
const (
	errMsgInternalServer = "내부 서버 오류가 발생했습니다."
	errMsgNotFound       = "페이지를 찾을 수 없습니다."
)

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 가로채서 표준 ErrorResponse JSON 형식으로 변환하여 반환합니다.
// 에러 발생 시 적절한 로그 레벨(Error/Warn)로 상세 정보를 기록합니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := errMsgInternalServer

	// Echo HTTPError 타입 확인
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else if resp, ok := he.Message.(ErrorResponse); ok {
			message = resp.Message
		}
	}

	// 404 에러는 사용자 친화적인 한국어 메시지로 통일
	if code == http.StatusNotFound {
		message = errMsgNotFound
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		// 5xx: 서버 내부 오류
		applog.WithComponentAndFields(component, fields).Error("HTTP 5xx 서버 오류")
	} else if code >= http.StatusBadRequest {
		// 4xx: 클라이언트 요청 오류
		applog.WithComponentAndFields(component, fields).Warn("HTTP 4xx 클라이언트 오류")
	}

	// 이중 응답 방지: 이미 응답이 전송된 경우 추가 응답 시도하지 않음
	if c.Response().Committed {
		return
	}

	// HEAD 요청 처리: HTTP 명세에 따라 헤더만 반환하고 본문은 생략
	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
