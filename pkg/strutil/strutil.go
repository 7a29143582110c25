// Package strutil 문자열 처리를 위한 유틸리티 함수들을 제공합니다.
package strutil

import (
	"html"
	"regexp"
	"strings"
)

// htmlTagRegexp HTML 태그 제거에 사용하는 정규식
// < 다음에 영문자가 오는 경우만 태그로 인식하여 수학 기호(<) 오탐지를 방지합니다.
// 예: "3 < 5"는 유지되고, "<br>"이나 "<script>"는 제거됩니다.
var htmlTagRegexp = regexp.MustCompile(`</?([a-zA-Z]+)[^>]*>`)

// NormalizeSpaces 문자열의 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: "  hello   world  " -> "hello world"
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// MaskSensitiveData 민감한 정보를 마스킹합니다.
// 토큰, 키 등의 민감 정보를 안전하게 로깅하기 위해 사용합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}

	// 3자 이하는 전체 마스킹
	if len(data) <= 3 {
		return "***"
	}

	// 앞 4자만 표시하고 나머지는 마스킹
	if len(data) <= 12 {
		return data[:4] + "***"
	}

	// 긴 토큰은 앞 4자 + 마스킹 + 뒤 4자
	return data[:4] + "***" + data[len(data)-4:]
}

// StripHTMLTags 문자열에서 HTML 태그를 제거하고, HTML 엔티티를 디코딩하여 순수한 텍스트를 반환합니다.
// 관리자가 입력한 커스텀 CSS를 페이지 헤더에 삽입하기 전 Stored XSS를 방지하기 위해 사용합니다.
//
// 엔티티로 인코딩된 태그(&lt;script&gt; 등)가 디코딩 후에 되살아나지 않도록,
// 디코딩과 태그 제거를 결과가 더 이상 변하지 않을 때까지 반복합니다.
func StripHTMLTags(s string) string {
	for {
		stripped := htmlTagRegexp.ReplaceAllString(html.UnescapeString(s), "")
		if stripped == s {
			return stripped
		}
		s = stripped
	}
}
