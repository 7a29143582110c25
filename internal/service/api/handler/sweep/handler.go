// Package sweep 외부 Cron에서 가격 이력 수집 배치를 구동하는 엔드포인트 핸들러를 제공합니다.
//
// 내장 스케줄러 대신 호스팅 환경의 Cron(crontab, 클라우드 스케줄러 등)으로
// 배치를 실행하는 운영 형태를 위한 것으로, 공유 토큰으로만 보호됩니다.
package sweep

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/service/api/httputil"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 배치 구동 핸들러 로그의 컴포넌트 이름
const component = "api.handler.sweep"

const (
	// queryParamToken 배치 구동 인증용 쿼리 파라미터 키
	queryParamToken = "token"

	// queryParamLimit 1회 실행에서 처리할 상품 수 쿼리 파라미터 키 ("all" 허용)
	queryParamLimit = "limit"

	// limitAll 전체 상품을 처리하는 limit 값
	limitAll = "all"
)

// Sweeper 가격 이력 수집 배치의 실행을 담당하는 인터페이스입니다.
type Sweeper interface {
	Sweep(ctx context.Context, limit int) (int, int64, error)
}

// Response 배치 실행 결과 응답입니다.
type Response struct {
	Status   string `json:"status"`
	Recorded int    `json:"recorded"`
	Purged   int64  `json:"purged"`
}

// Handler 외부 Cron 구동 요청을 처리하는 핸들러입니다.
type Handler struct {
	cfg *config.SweepConfig

	sweeper Sweeper
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(cfg *config.SweepConfig, sweeper Sweeper) *Handler {
	if cfg == nil {
		panic("SweepConfig는 필수입니다")
	}
	if sweeper == nil {
		panic("Sweeper는 필수입니다")
	}

	return &Handler{
		cfg: cfg,

		sweeper: sweeper,
	}
}

// RunHandler 공유 토큰을 검증한 후 가격 이력 수집 배치를 실행합니다.
//
// 토큰이 없거나 일치하지 않으면 어떤 처리도 수행하지 않고 403을 반환합니다.
// limit 파라미터가 생략되면 설정 파일의 배치 크기를 사용하며,
// "all"이면 전체 상품을 처리합니다.
func (h *Handler) RunHandler(c echo.Context) error {
	token := c.QueryParam(queryParamToken)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.CronToken)) != 1 {
		applog.WithComponentAndFields(component, applog.Fields{
			"remote_ip": c.RealIP(),
		}).Warn("배치 구동 요청의 토큰이 유효하지 않습니다")

		return httputil.NewForbiddenError("Forbidden")
	}

	limit, err := h.parseLimit(c.QueryParam(queryParamLimit))
	if err != nil {
		return err
	}

	recorded, purged, err := h.sweeper.Sweep(c.Request().Context(), limit)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
			"limit": limit,
		}).Error("배치 실행 중 오류가 발생했습니다")

		return httputil.NewInternalServerError("배치 실행에 실패하였습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"recorded": recorded,
		"purged":   purged,
		"limit":    limit,
	}).Info("외부 Cron 구동 배치가 정상적으로 완료되었습니다")

	return c.JSON(http.StatusOK, Response{
		Status:   "ok",
		Recorded: recorded,
		Purged:   purged,
	})
}

// parseLimit limit 쿼리 파라미터를 해석합니다.
// 빈 값이면 설정 파일의 배치 크기를, "all"이면 0(전체)을 반환합니다.
func (h *Handler) parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return h.cfg.BatchLimitCount(), nil
	}
	if strings.EqualFold(raw, limitAll) {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, httputil.NewBadRequestError("limit은 1 이상의 정수 또는 \"all\"이어야 합니다")
	}

	return limit, nil
}
