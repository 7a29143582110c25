package handler

import (
	"net/http"
	"strconv"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/service/api/httputil"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// 수집 요청의 트리거 출처(trigger 쿼리 파라미터)
const (
	// triggerManual 관리자가 직접 수집을 요청한 경우. 기록 방식 설정과 무관하게 항상 수집합니다.
	triggerManual = "manual"

	// triggerHook 호스트 플랫폼의 상품 저장이나 가격 규칙 변경 훅이 호출한 경우.
	// 기록 방식이 instant일 때만 수집하고, cron 방식에서는 스케줄 배치에 맡깁니다.
	triggerHook = "hook"
)

// SnapshotResponse 상품 가격 수집 응답입니다.
type SnapshotResponse struct {
	ResultCode int  `json:"result_code"`
	Recorded   int  `json:"recorded"`
	Skipped    bool `json:"skipped"`
}

// SnapshotHandler 단일 상품의 가격 관측치를 즉시 수집합니다.
//
// 호스트 플랫폼에서 상품 저장이나 가격 규칙 변경이 발생했을 때 호출하는
// 엔드포인트입니다. 훅 트리거(trigger=hook) 요청은 기록 방식 설정(logging_mode)이
// instant일 때만 수집하며, cron 방식에서는 수집하지 않고 skipped=true를 반환합니다.
// 트리거를 지정하지 않은 직접 호출은 설정과 무관하게 항상 수집합니다.
func (h *Handler) SnapshotHandler(c echo.Context) error {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return NewErrInvalidProductID(raw)
	}

	trigger := c.QueryParam("trigger")
	if trigger == "" {
		trigger = triggerManual
	}
	if trigger != triggerManual && trigger != triggerHook {
		return NewErrInvalidTrigger(trigger)
	}

	if trigger == triggerHook && h.loggingMode != config.LoggingModeInstant {
		h.log(c).WithFields(applog.Fields{
			"product_id":   id,
			"logging_mode": h.loggingMode,
		}).Info("기록 방식이 instant가 아니므로 훅 트리거 수집을 건너뜁니다")

		return c.JSON(http.StatusOK, SnapshotResponse{
			ResultCode: 0,
			Skipped:    true,
		})
	}

	recorded, err := h.snapshotter.RecordObservations(c.Request().Context(), uint(id))
	if err != nil {
		h.log(c).WithFields(applog.Fields{
			"error":      err,
			"product_id": id,
		}).Error("상품 가격 수집 실패")

		return httputil.NewInternalServerError("상품 가격을 수집할 수 없습니다")
	}

	h.log(c).WithFields(applog.Fields{
		"product_id": id,
		"recorded":   recorded,
	}).Info("상품 가격 수집 완료")

	return c.JSON(http.StatusOK, SnapshotResponse{
		ResultCode: 0,
		Recorded:   recorded,
	})
}
