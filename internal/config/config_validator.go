package config

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// 텔레그램 봇 토큰 검증을 위한 정규식 (예: 123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11)
	telegramBotTokenRegex = regexp.MustCompile(`^\d{3,20}:[a-zA-Z0-9_-]{30,50}$`)
)

// newValidator 새로운 Validator 인스턴스를 생성하고 커스텀 유효성 검사 함수를 등록합니다.
func newValidator() *validator.Validate {
	v := validator.New()

	// 검증 에러가 났을 때, 에러 메시지에 Go 구조체 필드명(예: CronToken) 대신 JSON 이름(예: cron_token)을 보여주도록 설정합니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 커스텀 유효성 검사 함수 등록
	if err := v.RegisterValidation("cors_origin", validateCORSOrigin); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'cors_origin' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}
	if err := v.RegisterValidation("telegram_bot_token", validateTelegramBotToken); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'telegram_bot_token' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}
	if err := v.RegisterValidation("batch_limit", validateBatchLimit); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'batch_limit' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// validateCORSOrigin 입력된 문자열이 유효한 CORS Origin 형식(Scheme://Host[:Port])인지 검증합니다.
//
// Origin은 경로(Path), 쿼리(Query), 프래그먼트(Fragment)를 포함할 수 없습니다.
func validateCORSOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" || u.User != nil {
		return false
	}
	return u.Path == "" && u.RawQuery == "" && u.Fragment == ""
}

// validateTelegramBotToken 입력된 문자열이 유효한 텔레그램 봇 토큰 형식인지 검증합니다.
//
// 텔레그램 봇 토큰은 식별자(숫자)와 비밀키(문자열)가 콜론(:)으로 구분된 형태여야 합니다.
// 예: "123456789:ABC-DEF1234ghIkl-zyx57W2v1u123ew11"
func validateTelegramBotToken(fl validator.FieldLevel) bool {
	return telegramBotTokenRegex.MatchString(fl.Field().String())
}

// validateBatchLimit 일괄 처리 상품 수 설정이 "all" 또는 1 이상의 정수인지 검증합니다.
func validateBatchLimit(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if strings.EqualFold(s, "all") {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1
}

// checkStruct 구조체 인스턴스의 유효성을 태그 규칙에 따라 검증하고, 발생한 오류를 사용자 친화적인 도메인 에러로 변환합니다.
//
// 선택적 인자인 fields를 제공하면 해당 필드 범위 내에서만 부분 검증(Partial Validation)을 수행합니다.
func checkStruct(v *validator.Validate, s interface{}, contextName string, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = v.StructPartial(s, fields...)
	} else {
		err = v.Struct(s)
	}

	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			// 첫 번째 에러만 상세히 보고
			firstErr := validationErrors[0]

			// 필드별(Field) 커스텀 에러 처리
			switch firstErr.StructField() {
			case "DSN":
				return apperrors.New(apperrors.InvalidInput, "데이터베이스 접속 정보(dsn)는 필수입니다")
			case "WindowDays":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("최저가 계산 기간(window_days)은 1 이상이어야 합니다: '%v'", firstErr.Value()))
			case "Precision":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("소수점 자릿수(precision)는 0에서 6 사이의 값이어야 합니다: '%v'", firstErr.Value()))
			case "RetentionDays":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("이력 보존 기간(retention_days)은 1 이상이어야 합니다: '%v'", firstErr.Value()))
			case "DisplayMode":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("최저가 표시 방식(display_mode)은 'always' 또는 'only_discount'여야 합니다: '%v'", firstErr.Value()))
			case "PriceKind":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("가격 종류(price_kind)는 'gross' 또는 'net'이어야 합니다: '%v'", firstErr.Value()))
			case "LoggingMode":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("이력 기록 방식(logging_mode)은 'instant' 또는 'cron'이어야 합니다: '%v'", firstErr.Value()))
			case "CronToken":
				if firstErr.Tag() == "required" {
					return apperrors.New(apperrors.InvalidInput, "일괄 수집 인증 토큰(cron_token)은 필수입니다")
				}
				return apperrors.New(apperrors.InvalidInput, "일괄 수집 인증 토큰(cron_token)은 최소 16자 이상이어야 합니다")
			case "BotToken":
				if firstErr.Tag() == "required_if" {
					return apperrors.New(apperrors.InvalidInput, "텔레그램 알림 활성화 시 봇 토큰(bot_token)은 필수입니다")
				}
				// telegram_bot_token 태그 에러는 아래 공통 핸들러로 위임
			case "ChatID":
				return apperrors.New(apperrors.InvalidInput, "텔레그램 알림 활성화 시 채팅 ID(chat_id)는 필수입니다")
			case "ListenPort":
				return apperrors.New(apperrors.InvalidInput, "웹 서비스 포트(listen_port)는 1에서 65535 사이의 값이어야 합니다")
			case "TLSCertFile":
				switch firstErr.Tag() {
				case "required_if":
					return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 TLS 인증서 파일 경로(tls_cert_file)는 필수입니다")
				case "file":
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 인증서 파일(tls_cert_file)을 찾을 수 없습니다: '%v'", firstErr.Value()))
				default:
					return apperrors.New(apperrors.InvalidInput, "TLS 인증서 파일 경로(tls_cert_file) 설정이 올바르지 않습니다")
				}
			case "TLSKeyFile":
				switch firstErr.Tag() {
				case "required_if":
					return apperrors.New(apperrors.InvalidInput, "TLS 서버 활성화 시 TLS 키 파일 경로(tls_key_file)는 필수입니다")
				case "file":
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("지정된 TLS 키 파일(tls_key_file)을 찾을 수 없습니다: '%v'", firstErr.Value()))
				default:
					return apperrors.New(apperrors.InvalidInput, "TLS 키 파일 경로(tls_key_file) 설정이 올바르지 않습니다")
				}
			}

			// 태그별(Tag) 커스텀 에러 처리 (범용)
			switch firstErr.Tag() {
			case "unique":
				target := firstErr.Field()
				switch target {
				case "applications":
					target = "애플리케이션(Application)"
				}

				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s 내에 중복된 %s ID가 존재합니다 (설정 값을 확인해주세요)", contextName, target))

			case "cors_origin":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", firstErr.Value()))

			case "telegram_bot_token":
				return apperrors.New(apperrors.InvalidInput, "텔레그램 봇 토큰(bot_token) 형식이 올바르지 않습니다 (올바른 형식: 123456:ABC-DEF...)")

			case "batch_limit":
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("일괄 처리 상품 수(batch_limit)는 'all' 또는 1 이상의 정수여야 합니다: '%v'", firstErr.Value()))
			}

			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("%s의 설정이 올바르지 않습니다: %s (조건: %s)", contextName, firstErr.Field(), firstErr.Tag()))
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
	}
	return nil
}

// checkUniqueField 슬라이스 내의 특정 필드 값이 유일한지 검사합니다.
func checkUniqueField(v *validator.Validate, data interface{}, fieldName, contextName string) error {
	if err := v.Var(data, "unique="+fieldName); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range validationErrors {
				if fieldErr.Tag() == "unique" {
					return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("중복된 %s ID가 존재합니다: '%v'", contextName, fieldErr.Value()))
				}
			}
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유일성 검증에 실패했습니다", contextName))
	}
	return nil
}
