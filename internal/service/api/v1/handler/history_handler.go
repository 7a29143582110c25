package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/darkkaiser/omnibus-server/internal/service/api/httputil"
	"github.com/darkkaiser/omnibus-server/internal/service/api/v1/model/request"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// exportBatchSize CSV 내보내기 시 한 번에 조회하는 관측치 개수
const exportBatchSize = 500

// ListHistoryResponse 가격 관측 이력 조회 응답입니다.
type ListHistoryResponse struct {
	ResultCode int                        `json:"result_code"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PerPage    int                        `json:"per_page"`
	Items      []history.PriceObservation `json:"items"`
}

// DeleteHistoryResponse 가격 관측 이력 일괄 삭제 응답입니다.
type DeleteHistoryResponse struct {
	ResultCode int   `json:"result_code"`
	Deleted    int64 `json:"deleted"`
}

// ListHistoryHandler 가격 관측 이력을 조회합니다.
//
// 쿼리 파라미터:
//   - product_id, shop_id, variant_id: 조회 조건 (생략 가능)
//   - page, per_page: 페이지네이션 (기본 1페이지, 50건)
//
// 결과는 관측 시각 내림차순(최신 우선)으로 정렬됩니다.
func (h *Handler) ListHistoryHandler(c echo.Context) error {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return err
	}

	items, total, err := h.historyStore.List(c.Request().Context(), filter)
	if err != nil {
		h.log(c).WithField("error", err).Error("가격 관측 이력 조회 실패")
		return httputil.NewInternalServerError("가격 관측 이력을 조회할 수 없습니다")
	}

	return c.JSON(http.StatusOK, ListHistoryResponse{
		ResultCode: 0,
		Total:      total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		Items:      items,
	})
}

// DeleteHistoryHandler 지정된 ID 목록의 가격 관측 이력을 일괄 삭제합니다.
// 존재하지 않는 ID는 에러가 아니며, 실제로 삭제된 행 수를 반환합니다.
func (h *Handler) DeleteHistoryHandler(c echo.Context) error {
	req := new(request.DeleteHistoryRequest)
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}

	if err := h.validate.Struct(req); err != nil {
		return NewErrValidationFailed(err)
	}

	deleted, err := h.historyStore.DeleteByIDs(c.Request().Context(), req.IDs)
	if err != nil {
		h.log(c).WithFields(applog.Fields{
			"error":     err,
			"ids_count": len(req.IDs),
		}).Error("가격 관측 이력 삭제 실패")

		return httputil.NewInternalServerError("가격 관측 이력을 삭제할 수 없습니다")
	}

	h.log(c).WithFields(applog.Fields{
		"requested": len(req.IDs),
		"deleted":   deleted,
	}).Info("가격 관측 이력 일괄 삭제 완료")

	return c.JSON(http.StatusOK, DeleteHistoryResponse{
		ResultCode: 0,
		Deleted:    deleted,
	})
}

// ExportHistoryHandler 가격 관측 이력을 CSV 파일로 내보냅니다.
// 조회 조건은 ListHistoryHandler와 동일하며, 페이지네이션 없이 전체를 스트리밍합니다.
func (h *Handler) ExportHistoryHandler(c echo.Context) error {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return err
	}

	// 내보내기는 페이지네이션을 사용하지 않는다.
	filter.Page = 0
	filter.PerPage = 0

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="price_history_%s.csv"`, time.Now().Format("20060102")))
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)

	header := []string{
		"id", "shop_id", "product_id", "variant_id", "currency_id", "country_id", "group_id",
		"price_tax_excl", "price_tax_incl", "captured_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	err = h.historyStore.ForEachBatch(c.Request().Context(), filter, exportBatchSize,
		func(batch []history.PriceObservation) error {
			for _, obs := range batch {
				record := []string{
					strconv.FormatUint(uint64(obs.ID), 10),
					strconv.FormatUint(uint64(obs.ShopID), 10),
					strconv.FormatUint(uint64(obs.ProductID), 10),
					strconv.FormatUint(uint64(obs.VariantID), 10),
					strconv.FormatUint(uint64(obs.CurrencyID), 10),
					strconv.FormatUint(uint64(obs.CountryID), 10),
					strconv.FormatUint(uint64(obs.GroupID), 10),
					obs.PriceTaxExcl.String(),
					obs.PriceTaxIncl.String(),
					obs.CapturedAt.Format(time.RFC3339),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}

			// 배치 단위로 클라이언트에 전송
			w.Flush()
			return w.Error()
		})
	if err != nil {
		// 응답 헤더가 이미 전송되었으므로 로그만 남긴다.
		h.log(c).WithField("error", err).Error("가격 관측 이력 CSV 내보내기 실패")
		return nil
	}

	w.Flush()
	return w.Error()
}

// parseHistoryFilter 이력 조회 쿼리 파라미터를 해석합니다.
func parseHistoryFilter(c echo.Context) (history.Filter, error) {
	var filter history.Filter

	productID, err := parseUintParam(c, "product_id")
	if err != nil {
		return filter, err
	}
	filter.ProductID = productID

	shopID, err := parseUintParam(c, "shop_id")
	if err != nil {
		return filter, err
	}
	filter.ShopID = shopID

	// variant_id는 0(상품 본체)도 유효한 조건이므로 존재 여부로 판별한다.
	if raw := c.QueryParam("variant_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, httputil.NewBadRequestError("variant_id가 올바르지 않습니다")
		}
		variantID := uint(v)
		filter.VariantID = &variantID
	}

	page, err := parseIntParam(c, "page")
	if err != nil {
		return filter, err
	}
	filter.Page = page

	perPage, err := parseIntParam(c, "per_page")
	if err != nil {
		return filter, err
	}
	filter.PerPage = perPage

	return filter, nil
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, httputil.NewBadRequestError(fmt.Sprintf("%s가 올바르지 않습니다", name))
	}
	return uint(v), nil
}

func parseIntParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, httputil.NewBadRequestError(fmt.Sprintf("%s가 올바르지 않습니다", name))
	}
	return v, nil
}
