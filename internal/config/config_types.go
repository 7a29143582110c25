package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/darkkaiser/omnibus-server/pkg/cronx"
	"github.com/go-playground/validator/v10"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug    bool           `json:"debug"`
	Database DatabaseConfig `json:"database"`
	Omnibus  OmnibusConfig  `json:"omnibus"`
	Sweep    SweepConfig    `json:"sweep"`
	Alert    AlertConfig    `json:"alert"`
	API      APIConfig      `json:"api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	// Database 유효성 검사
	if err := c.Database.validate(v); err != nil {
		return err
	}

	// Omnibus 정책 유효성 검사
	if err := c.Omnibus.validate(v); err != nil {
		return err
	}

	// Sweep 유효성 검사
	if err := c.Sweep.validate(v); err != nil {
		return err
	}

	// Alert 유효성 검사
	if err := c.Alert.validate(v); err != nil {
		return err
	}

	// API 유효성 검사
	if err := c.API.validate(v); err != nil {
		return err
	}

	return nil
}

// VerifyRecommendations 서비스 운영의 안정성과 보안을 위해 권장되는 설정 준수 여부를 진단합니다.
// 강제적인 에러를 발생시키지는 않으나, 잠재적 위험 요소(예: Well-known Port 사용)에 대한 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string
	warnings = append(warnings, c.Omnibus.VerifyRecommendations()...)
	warnings = append(warnings, c.API.VerifyRecommendations()...)
	return warnings
}

// DatabaseConfig 가격 이력 및 상품 정보를 저장하는 데이터베이스의 접속 정보를 정의하는 구조체
type DatabaseConfig struct {
	DSN             string `json:"dsn" validate:"required"`
	MaxOpenConns    int    `json:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int    `json:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime string `json:"conn_max_lifetime"`
}

func (c *DatabaseConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "Database"); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("데이터베이스 커넥션 최대 수명(conn_max_lifetime) 설정이 올바르지 않습니다: '%s' (예: 5m, 1h)", c.ConnMaxLifetime))
	}
	return nil
}

// ConnMaxLifetimeDuration 설정된 커넥션 최대 수명 문자열을 time.Duration으로 변환하여 반환합니다.
// 값의 형식 검증은 validate에서 이미 수행되므로, 변환 실패 시 기본값을 반환합니다.
func (c *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnMaxLifetime)
	if err != nil {
		d, _ = time.ParseDuration(DefaultConnMaxLifetime)
	}
	return d
}

// OmnibusConfig 최저가 이력 기록 및 표시 정책을 정의하는 설정 구조체
type OmnibusConfig struct {
	WindowDays      int               `json:"window_days" validate:"min=1"`
	DisplayMode     string            `json:"display_mode" validate:"oneof=always only_discount"`
	PriceKind       string            `json:"price_kind" validate:"oneof=gross net"`
	ShowPercent     bool              `json:"show_percent"`
	Precision       int               `json:"precision" validate:"min=0,max=6"`
	RetentionDays   int               `json:"retention_days" validate:"min=1"`
	LoggingMode     string            `json:"logging_mode" validate:"oneof=instant cron"`
	LogAllCountries bool              `json:"log_all_countries"`
	LogAllGroups    bool              `json:"log_all_groups"`
	ProductLabel    map[string]string `json:"product_label"`
	ListingLabel    map[string]string `json:"listing_label"`
	CustomCSS       string            `json:"custom_css"`
}

func (c *OmnibusConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "Omnibus"); err != nil {
		return err
	}

	// 이력 보존 기간이 최저가 계산 기간보다 짧으면 계산 대상 이력이 먼저 삭제되어
	// 최저가 결과가 왜곡되므로 허용하지 않는다.
	if c.RetentionDays < c.WindowDays {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("이력 보존 기간(retention_days: %d)은 최저가 계산 기간(window_days: %d)보다 짧을 수 없습니다", c.RetentionDays, c.WindowDays))
	}

	return nil
}

func (c *OmnibusConfig) VerifyRecommendations() []string {
	var warnings []string

	// EU 옴니버스 지침은 최소 30일의 이력 기간을 요구한다.
	if c.WindowDays < 30 {
		warnings = append(warnings, fmt.Sprintf("최저가 계산 기간(window_days: %d)이 30일 미만으로 설정되었습니다. EU 옴니버스 지침은 최소 30일을 요구합니다", c.WindowDays))
	}

	return warnings
}

// SweepConfig 스케줄러 기반의 일괄 가격 수집 작업을 정의하는 설정 구조체
type SweepConfig struct {
	CronToken  string          `json:"cron_token" validate:"required,min=16"`
	BatchLimit string          `json:"batch_limit" validate:"batch_limit"`
	Scheduler  SchedulerConfig `json:"scheduler"`
}

func (c *SweepConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "Sweep"); err != nil {
		return err
	}

	// Cron 표현식 검증 (Scheduler가 활성화된 경우)
	if c.Scheduler.Runnable {
		if err := cronx.Validate(c.Scheduler.TimeSpec); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, "일괄 가격 수집 스케줄러(time_spec) 설정이 유효하지 않습니다")
		}
	}

	return nil
}

// BatchLimitCount 설정된 일괄 처리 상품 수를 정수로 반환합니다.
// "all"로 설정된 경우 전체 상품을 의미하는 0을 반환합니다.
func (c *SweepConfig) BatchLimitCount() int {
	if strings.EqualFold(strings.TrimSpace(c.BatchLimit), "all") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.BatchLimit))
	if err != nil || n < 1 {
		n, _ = strconv.Atoi(DefaultSweepBatchLimit)
	}
	return n
}

// SchedulerConfig 반복 실행 여부와 Cron 표현식을 정의하는 구조체
type SchedulerConfig struct {
	Runnable bool   `json:"runnable"`
	TimeSpec string `json:"time_spec"`
}

// AlertConfig 운영 장애 알림 채널을 정의하는 설정 구조체
type AlertConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

func (c *AlertConfig) validate(v *validator.Validate) error {
	return c.Telegram.validate(v)
}

// TelegramConfig 텔레그램 봇 토큰 및 채팅 ID 정보를 담는 설정 구조체
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token" validate:"required_if=Enabled true,omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_if=Enabled true"`
}

func (c *TelegramConfig) validate(v *validator.Validate) error {
	return checkStruct(v, c, "Telegram Alert")
}

// APIConfig 가격 이력 조회를 위한 REST API 서버 설정 구조체
type APIConfig struct {
	WS           WSConfig            `json:"ws"`
	CORS         CORSConfig          `json:"cors"`
	Applications []ApplicationConfig `json:"applications" validate:"unique=ID"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	// WS 유효성 검사
	if err := c.WS.validate(v); err != nil {
		return err
	}

	// CORS 유효성 검사
	if err := c.CORS.validate(v); err != nil {
		return err
	}

	// Applications 중복 ID 검사
	if err := checkUniqueField(v, c.Applications, "ID", "Application"); err != nil {
		return err
	}

	for _, app := range c.Applications {
		if err := checkStruct(v, app, fmt.Sprintf("Application['%s']", app.ID)); err != nil {
			return err
		}

		if strings.TrimSpace(app.AppKey) == "" {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("Application['%s']의 API 키(app_key)가 설정되지 않았습니다", app.ID))
		}
	}

	return nil
}

func (c *APIConfig) VerifyRecommendations() []string {
	return c.WS.VerifyRecommendations()
}

// WSConfig 웹 서버의 포트 및 TLS(HTTPS) 보안 설정을 정의하는 구조체
type WSConfig struct {
	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`
	ListenPort  int    `json:"listen_port" validate:"min=1,max=65535"`
}

func (c *WSConfig) validate(v *validator.Validate) error {
	return checkStruct(v, c, "WS")
}

func (c *WSConfig) VerifyRecommendations() []string {
	var warnings []string

	// 시스템 예약 포트(1024 미만) 사용 경고
	if c.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.ListenPort))
	}

	return warnings
}

// CORSConfig 웹 브라우저의 교차 출처 리소스 공유(CORS) 정책을 설정하는 구조체
type CORSConfig struct {
	AllowOrigins []string `json:"allow_origins" validate:"dive,cors_origin"`
}

func (c *CORSConfig) validate(v *validator.Validate) error {
	if len(c.AllowOrigins) == 0 {
		return apperrors.New(apperrors.InvalidInput, "CORS 허용 도메인(allow_origins) 목록이 비어있습니다")
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			if len(c.AllowOrigins) > 1 {
				return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
			}

			// 와일드카드만 있는 경우는 유효함 (validator skip)
			return nil
		}
	}

	// 각 Origin 유효성 검사
	return checkStruct(v, c, "CORS")
}

// ApplicationConfig 가격 이력 API를 사용할 수 있는 클라이언트 애플리케이션의 인증 정보를 정의하는 구조체
type ApplicationConfig struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AppKey      string `json:"app_key"`
}
