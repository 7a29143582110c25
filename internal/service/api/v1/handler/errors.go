package handler

import (
	"fmt"

	"github.com/darkkaiser/omnibus-server/internal/service/api/httputil"
	"github.com/go-playground/validator/v10"
)

// NewErrInvalidBody 요청 본문(Body)의 데이터 형식이 올바르지 않거나 파싱에 실패했을 때 발생하는 에러를 생성합니다.
func NewErrInvalidBody() error {
	return httputil.NewBadRequestError("요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요")
}

// NewErrValidationFailed 요청 데이터의 유효성 검증에 실패했을 때 발생하는 에러를 생성합니다.
// 첫 번째 위반 필드만 메시지에 담아 반환합니다.
func NewErrValidationFailed(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		ve := verrs[0]
		return httputil.NewBadRequestError(fmt.Sprintf("'%s' 필드의 값이 올바르지 않습니다 (검증 규칙: %s)", ve.Field(), ve.Tag()))
	}
	return httputil.NewBadRequestError("요청 데이터의 유효성 검증에 실패하였습니다")
}

// NewErrInvalidProductID 경로 파라미터의 상품 ID가 올바르지 않을 때 발생하는 에러를 생성합니다.
func NewErrInvalidProductID(raw string) error {
	return httputil.NewBadRequestError(fmt.Sprintf("상품 ID가 올바르지 않습니다 (입력값: %s)", raw))
}

// NewErrInvalidTrigger 수집 요청의 trigger 쿼리 파라미터 값이 올바르지 않을 때 발생하는 에러를 생성합니다.
func NewErrInvalidTrigger(raw string) error {
	return httputil.NewBadRequestError(fmt.Sprintf("trigger 값은 'manual' 또는 'hook'이어야 합니다 (입력값: %s)", raw))
}
