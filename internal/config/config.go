package config

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "omnibus-server"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	// 실행 인자를 통해 명시적인 경로가 제공되지 않을 경우, 시스템은 이 파일을 탐색하여 구성을 로드합니다.
	DefaultFilename = AppName + ".json"

	// ------------------------------------------------------------------------------------------------
	// 최저가 이력 정책 기본값
	// ------------------------------------------------------------------------------------------------

	// DefaultWindowDays 최저가 계산 시 조회하는 이력 기간(일) 기본값
	DefaultWindowDays = 30

	// DefaultDisplayMode 최저가 정보 표시 방식 기본값 (할인 중인 상품에만 표시)
	DefaultDisplayMode = DisplayModeOnlyDiscount

	// DefaultPriceKind 이력 기록 및 비교에 사용하는 가격 종류 기본값 (세금 포함가)
	DefaultPriceKind = PriceKindGross

	// DefaultPrecision 가격 비교 및 표시에 사용하는 소수점 자릿수 기본값
	DefaultPrecision = 2

	// DefaultRetentionDays 가격 이력 보존 기간(일) 기본값
	DefaultRetentionDays = 365

	// DefaultSweepBatchLimit 일괄 가격 수집 시 한 번에 처리하는 상품 수 기본값
	DefaultSweepBatchLimit = "50"

	// ------------------------------------------------------------------------------------------------
	// 데이터베이스 커넥션 풀 기본값
	// ------------------------------------------------------------------------------------------------

	// DefaultMaxOpenConns 데이터베이스 최대 동시 커넥션 수 기본값
	DefaultMaxOpenConns = 25

	// DefaultMaxIdleConns 데이터베이스 유휴 커넥션 수 기본값
	DefaultMaxIdleConns = 5

	// DefaultConnMaxLifetime 데이터베이스 커넥션 최대 수명 기본값
	DefaultConnMaxLifetime = "5m"
)

// 가격 이력 표시 방식
const (
	// DisplayModeAlways 모든 상품에 최저가 정보를 항상 표시합니다.
	DisplayModeAlways = "always"

	// DisplayModeOnlyDiscount 할인 중인 상품에만 최저가 정보를 표시합니다.
	DisplayModeOnlyDiscount = "only_discount"
)

// 이력 기록에 사용하는 가격 종류
const (
	// PriceKindGross 세금 포함 가격을 기준으로 기록하고 비교합니다.
	PriceKindGross = "gross"

	// PriceKindNet 세금 제외 가격을 기준으로 기록하고 비교합니다.
	PriceKindNet = "net"
)

// 가격 이력 기록 방식
const (
	// LoggingModeInstant 가격 변경이 감지되는 즉시 이력을 기록합니다.
	LoggingModeInstant = "instant"

	// LoggingModeCron 스케줄러가 주기적으로 전체 상품을 순회하며 이력을 기록합니다.
	LoggingModeCron = "cron"
)

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값 로드 (가장 낮은 우선순위)
	err := k.Load(confmap.Provider(map[string]interface{}{
		"omnibus.window_days":       DefaultWindowDays,
		"omnibus.display_mode":      DefaultDisplayMode,
		"omnibus.price_kind":        DefaultPriceKind,
		"omnibus.show_percent":      true,
		"omnibus.precision":         DefaultPrecision,
		"omnibus.retention_days":    DefaultRetentionDays,
		"omnibus.logging_mode":      LoggingModeInstant,
		"omnibus.log_all_countries": true,
		"omnibus.log_all_groups":    true,
		"sweep.batch_limit":         DefaultSweepBatchLimit,
		"database.max_open_conns":   DefaultMaxOpenConns,
		"database.max_idle_conns":   DefaultMaxIdleConns,
		"database.conn_max_lifetime": DefaultConnMaxLifetime,
	}, "."), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일 로드 (기본값 덮어쓰기)
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수 로드 (최우선 순위, JSON 설정 덮어쓰기)
	// 접두사: OMNIBUS_
	// 구분자: 이중 언더스코어(__)를 점(.)으로 변환 (계층 구조 표현)
	// 예: OMNIBUS_SWEEP__CRON_TOKEN -> sweep.cron_token
	if err := k.Load(env.Provider("OMNIBUS_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "OMNIBUS_")
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	// 4. 구조체 언마샬링 (Strict Validation 적용)
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true, // 파일에 존재하지만 구조체에 없는 필드가 있을 경우 에러를 발생시킴
			WeaklyTypedInput: true,
		},
	}
	var appConfig AppConfig
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	// 5. 유효성 검사 수행 (정합성 체크)
	if err := appConfig.validate(newValidator()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
