package cronx

import (
	"fmt"
	"strings"
)

// Validate Cron 표현식이 표준 파서(StandardParser) 스펙에 맞는지 검증합니다.
// 앞뒤 공백은 허용되며, 유효하지 않은 표현식인 경우 원인을 포함한 에러를 반환합니다.
func Validate(spec string) error {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return fmt.Errorf("cron 표현식이 비어 있습니다")
	}

	if _, err := StandardParser().Parse(trimmed); err != nil {
		return fmt.Errorf("유효하지 않은 cron 표현식(%s): %w", trimmed, err)
	}

	return nil
}
