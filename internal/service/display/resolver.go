// Package display 기간 내 최저가 정보를 계산하고 상품/목록 페이지에
// 삽입할 HTML 조각을 렌더링합니다.
package display

import (
	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/shopspring/decimal"
)

// comparePrecision 최저가 판정 시 사용하는 소수점 자릿수.
// 이력 테이블에 저장되는 가격의 자릿수와 동일합니다.
const comparePrecision = 6

// Resolution 최저가 계산 결과
type Resolution struct {
	// AbsoluteMin 기간 내 관측된 절대 최저가 (현재가가 신저가이면 현재가)
	AbsoluteMin decimal.Decimal

	// Reference 할인율 계산의 기준이 되는 가격
	Reference decimal.Decimal

	// PercentChange 기준 가격 대비 할인율 (정수 %, 할인 아님 = 0)
	PercentChange int

	// ShowBadge 할인율 배지를 함께 표시할지 여부 (설정으로 끌 수 있음)
	ShowBadge bool

	// PriceToDisplay 구매자에게 표시할 가격
	PriceToDisplay decimal.Decimal

	// ShouldDisplay 최저가 정보를 표시할지 여부
	ShouldDisplay bool
}

// Resolve 현재 판매가와 기간 내 서로 다른 이력 가격(오름차순, 최대 2개)으로부터
// 표시할 최저가 정보를 계산합니다.
//
// history[0]은 기간 내 최저가, history[1]은 차저가입니다. 이력이 없으면
// 표시할 정보가 없는 것으로 처리하며, 에러는 발생하지 않습니다.
func Resolve(current decimal.Decimal, history []decimal.Decimal, displayMode string, showPercent bool, precision int32) Resolution {
	var absoluteMin, reference decimal.Decimal

	switch {
	case len(history) == 1:
		// 이력상 가격이 단 하나뿐이면 그 가격이 최저가이자 기준 가격이다.
		absoluteMin = history[0]
		reference = history[0]

	case len(history) >= 2:
		lowest, secondLowest := history[0], history[1]

		currentRounded := current.Round(comparePrecision)
		lowestRounded := lowest.Round(comparePrecision)

		switch {
		case currentRounded.LessThan(lowestRounded):
			// 현재가가 신저가: 직전 최저가를 기준으로 삼는다.
			absoluteMin = current
			reference = lowest
		case currentRounded.Equal(lowestRounded):
			// 현재가가 기존 최저가와 같음: 차저가를 기준으로 삼는다.
			absoluteMin = lowest
			reference = secondLowest
		default:
			// 현재가가 이력보다 높음: 할인 신호 없음.
			absoluteMin = lowest
			reference = lowest
		}
	}

	// 할인율은 반올림 전의 원본 값으로 계산하되, 할인 여부 판정은
	// 설정된 표시 자릿수로 반올림한 값을 비교한다.
	percentChange := 0
	if reference.IsPositive() && current.Round(precision).LessThan(reference.Round(precision)) {
		ratio := current.Div(reference)
		percentChange = int(decimal.NewFromInt(1).Sub(ratio).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}

	// 할인을 표시하는 경우에는 할인 전 기준 가격을, 아니면 절대 최저가를 보여준다.
	priceToDisplay := absoluteMin
	if percentChange > 0 {
		priceToDisplay = reference
	}

	shouldDisplay := priceToDisplay.IsPositive() &&
		(displayMode == config.DisplayModeAlways ||
			(displayMode == config.DisplayModeOnlyDiscount && percentChange > 0))

	return Resolution{
		AbsoluteMin:    absoluteMin,
		Reference:      reference,
		PercentChange:  percentChange,
		ShowBadge:      showPercent && percentChange > 0,
		PriceToDisplay: priceToDisplay,
		ShouldDisplay:  shouldDisplay,
	}
}
