package request

import "encoding/json"

// RenderRequest 최저가 정보 HTML 조각 렌더링 요청입니다.
//
// Product에는 호스트 플랫폼이 템플릿에 전달하는 어떤 형태의 상품 데이터든
// 그대로 담을 수 있습니다 (숫자 ID, 배열, 상품 객체). 서버가 형태를 판별하여
// 상품/옵션 ID를 추출합니다.
type RenderRequest struct {
	ApplicationID string `json:"application_id"`

	Product json.RawMessage `json:"product" validate:"required"`

	// View 렌더링 대상 화면 (product: 상품 상세, listing: 상품 목록)
	View string `json:"view" validate:"required,oneof=product listing"`

	// 판매 문맥
	ShopID     uint `json:"shop_id" validate:"required,min=1"`
	CurrencyID uint `json:"currency_id" validate:"required,min=1"`
	CountryID  uint `json:"country_id" validate:"required,min=1"`
	GroupID    uint `json:"group_id" validate:"required,min=1"`

	// Locale 라벨 및 가격 표기에 사용할 로케일 (예: "pl", "en"). 생략 시 "en"
	Locale string `json:"locale"`
}
