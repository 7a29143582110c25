// Package alert 운영 중 발생한 장애 상황을 관리자에게 전파하는 알림 채널을 제공합니다.
package alert

import (
	"context"

	"github.com/darkkaiser/omnibus-server/internal/config"
)

// Sender 장애 알림 전송을 담당하는 인터페이스입니다.
//
// 알림 전송 실패는 서비스 동작에 영향을 주지 않아야 하므로
// 구현체는 에러를 반환하지 않고 내부적으로 로깅만 수행합니다.
type Sender interface {
	// Notify 관리자에게 알림 메시지를 전송합니다.
	// errorOccurred가 true이면 메시지에 에러 표시를 추가합니다.
	Notify(ctx context.Context, message string, errorOccurred bool)
}

// NewSender 설정에 맞는 Sender 구현체를 생성합니다.
//
// 텔레그램 알림이 비활성화된 경우 아무 동작도 하지 않는 Sender를 반환하므로
// 호출 측은 활성화 여부를 신경 쓰지 않고 동일하게 사용할 수 있습니다.
func NewSender(cfg *config.AlertConfig) (Sender, error) {
	if cfg == nil || !cfg.Telegram.Enabled {
		return noopSender{}, nil
	}
	return newTelegramSender(&cfg.Telegram)
}

// noopSender 알림 채널이 설정되지 않았을 때 사용하는 Sender 구현체입니다.
type noopSender struct{}

func (noopSender) Notify(_ context.Context, _ string, _ bool) {}
