// Package request v1 API의 요청 모델을 정의합니다.
package request

// DeleteHistoryRequest 가격 관측 이력 일괄 삭제 요청입니다.
//
// application_id는 인증 미들웨어가 Body 폴백으로 읽는 필드이며,
// 삭제 대상은 ids에 지정합니다. 존재하지 않는 id는 무시됩니다.
type DeleteHistoryRequest struct {
	ApplicationID string `json:"application_id"`
	IDs           []uint `json:"ids" validate:"required,min=1,dive,min=1"`
}
