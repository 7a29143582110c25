package handler

import (
	"net/http"

	"github.com/darkkaiser/omnibus-server/internal/pricing"
	"github.com/darkkaiser/omnibus-server/internal/service/api/v1/model/request"
	"github.com/darkkaiser/omnibus-server/internal/service/display"
	"github.com/labstack/echo/v4"
)

// HeaderResponse 페이지 헤더용 스타일 조각 응답입니다.
type HeaderResponse struct {
	ResultCode int    `json:"result_code"`
	HTML       string `json:"html"`
}

// RenderDisplayHandler 상품의 최저가 정보 HTML 조각을 생성합니다.
//
// 표시 조건을 만족하지 않는 경우에도 200 응답을 반환하며,
// should_display가 false이고 html이 빈 문자열입니다. 렌더링은 페이지 출력을
// 막지 않아야 하므로 내부 오류도 빈 결과로 처리됩니다.
func (h *Handler) RenderDisplayHandler(c echo.Context) error {
	req := new(request.RenderRequest)
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}

	if err := h.validate.Struct(req); err != nil {
		return NewErrValidationFailed(err)
	}

	ref := display.NormalizeProductRef(req.Product)

	pctx := pricing.Context{
		ShopID:     req.ShopID,
		CurrencyID: req.CurrencyID,
		CountryID:  req.CountryID,
		GroupID:    req.GroupID,
	}

	// 목록 배열처럼 같은 문맥이 반복되는 요청에서 이력 조회를 재사용한다.
	result := h.renderer.Render(c.Request().Context(), ref, display.View(req.View), pctx, req.Locale, display.NewRequestCache())

	return c.JSON(http.StatusOK, result)
}

// DisplayHeaderHandler 사용자 정의 CSS가 포함된 <style> 조각을 반환합니다.
// CSS가 설정되지 않은 경우 html은 빈 문자열입니다.
func (h *Handler) DisplayHeaderHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HeaderResponse{
		ResultCode: 0,
		HTML:       h.renderer.Header(),
	})
}
