package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/config"
	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// component Telegram 알림 전송기의 로깅용 컴포넌트 이름
const component = "alert.telegram"

// sendTimeout 텔레그램 API 호출 시 최대 대기 시간
const sendTimeout = 10 * time.Second

// messageMaxLength 텔레그램 Bot API가 허용하는 단일 메시지의 최대 길이 (바이트)
const messageMaxLength = 4096

// botAPI 테스트에서 텔레그램 API 호출을 대체하기 위한 인터페이스입니다.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramSender 텔레그램 봇을 통해 장애 알림을 전송하는 Sender 구현체입니다.
type telegramSender struct {
	bot    botAPI
	chatID int64
}

func newTelegramSender(cfg *config.TelegramConfig) (*telegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "텔레그램 봇 초기화에 실패하였습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot_username": bot.Self.UserName,
		"chat_id":      cfg.ChatID,
	}).Info("텔레그램 알림 채널이 활성화되었습니다")

	return &telegramSender{
		bot:    bot,
		chatID: cfg.ChatID,
	}, nil
}

// Notify 텔레그램으로 알림 메시지를 전송합니다.
//
// 전송 실패는 호출 측의 흐름을 막지 않도록 에러 로그로만 남깁니다.
func (s *telegramSender) Notify(ctx context.Context, message string, errorOccurred bool) {
	if errorOccurred {
		message = fmt.Sprintf("🚨 %s", message)
	}

	// 텔레그램 API 길이 제한을 초과하는 메시지는 뒤쪽을 잘라낸다.
	if len(message) > messageMaxLength {
		message = truncateUTF8(message, messageMaxLength)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(tgbotapi.NewMessage(s.chatID, message))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error":   err,
				"chat_id": s.chatID,
			}).Error("텔레그램 알림 전송에 실패하였습니다")
		}
	case <-sendCtx.Done():
		applog.WithComponentAndFields(component, applog.Fields{
			"error":   sendCtx.Err(),
			"chat_id": s.chatID,
		}).Error("텔레그램 알림 전송이 시간 초과로 중단되었습니다")
	}
}

// truncateUTF8 문자열을 최대 바이트 수 이하로 자르되 UTF-8 문자 경계를 보존합니다.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	b := []byte(s)[:max]
	for len(b) > 0 && b[len(b)-1]&0xC0 == 0x80 {
		b = b[:len(b)-1]
	}
	// 마지막 멀티바이트 문자의 선두 바이트까지 제거
	if len(b) > 0 && b[len(b)-1]&0xC0 == 0xC0 {
		b = b[:len(b)-1]
	}
	return string(b)
}
