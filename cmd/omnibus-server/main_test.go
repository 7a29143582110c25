package main

import (
	"fmt"
	"testing"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/pkg/version"
	"github.com/stretchr/testify/assert"
)

// TestBannerFormat은 배너 형식이 올바른지 확인합니다.
func TestBannerFormat(t *testing.T) {
	assert.Contains(t, banner, "%s", "배너에 버전 플레이스홀더가 있어야 합니다")
	assert.Contains(t, banner, "DarkKaiser", "배너에 개발자 이름이 있어야 합니다")
	assert.NotEmpty(t, banner, "배너가 비어있지 않아야 합니다")
}

// TestBannerOutput은 배너 출력이 정상적으로 작동하는지 확인합니다.
func TestBannerOutput(t *testing.T) {
	buildInfo := version.Get()
	formattedBanner := fmt.Sprintf(banner, buildInfo.Version)

	assert.Contains(t, formattedBanner, buildInfo.Version, "포맷된 배너에 버전이 포함되어야 합니다")
	assert.NotContains(t, formattedBanner, "%s", "포맷된 배너에 플레이스홀더가 남아있지 않아야 합니다")
}

// TestApplicationMetadata은 애플리케이션 메타데이터를 검증합니다.
func TestApplicationMetadata(t *testing.T) {
	t.Run("애플리케이션 이름", func(t *testing.T) {
		assert.Equal(t, "omnibus-server", config.AppName, "애플리케이션 이름이 정확해야 합니다")
		assert.NotContains(t, config.AppName, " ", "애플리케이션 이름에 공백이 없어야 합니다")
	})

	t.Run("설정 파일 이름", func(t *testing.T) {
		assert.Equal(t, "omnibus-server.json", config.DefaultFilename, "설정 파일 이름이 올바라야 합니다")
	})
}
