// Package auth 관리용 API 엔드포인트의 애플리케이션 인증을 담당합니다.
package auth

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/darkkaiser/omnibus-server/internal/config"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/darkkaiser/omnibus-server/pkg/strutil"
)

// component 인증 로그의 컴포넌트 이름
const component = "api.auth"

// Application 관리용 API를 사용하는 클라이언트 애플리케이션을 나타내는 도메인 엔티티입니다.
//
// config.ApplicationConfig의 런타임 표현으로, 인증 후 핸들러에서 사용됩니다.
type Application struct {
	ID          string // 애플리케이션 식별자
	Title       string // 애플리케이션 이름
	Description string // 애플리케이션 설명
}

// Authenticator 애플리케이션 인증을 담당하는 인증자입니다.
//
// 설정 파일에 등록된 애플리케이션 정보를 메모리에 로드한 후,
// Application ID와 App Key 조합으로 인증을 수행합니다.
//
// sync.RWMutex를 사용하므로 여러 고루틴에서 동시에 Authenticate를 호출해도 안전합니다.
type Authenticator struct {
	mu           sync.RWMutex
	applications map[string]*registeredApplication
}

// registeredApplication 인증 검증에 필요한 App Key를 포함한 내부 표현입니다.
// App Key는 인증자 밖으로 노출하지 않습니다.
type registeredApplication struct {
	Application

	appKey string
}

// NewAuthenticator 설정에서 애플리케이션을 로드하여 Authenticator를 생성합니다.
func NewAuthenticator(cfg *config.APIConfig) *Authenticator {
	applications := make(map[string]*registeredApplication)
	for _, application := range cfg.Applications {
		applications[application.ID] = &registeredApplication{
			Application: Application{
				ID:          application.ID,
				Title:       application.Title,
				Description: application.Description,
			},
			appKey: application.AppKey,
		}
	}

	return &Authenticator{
		applications: applications,
	}
}

// Authenticate 애플리케이션을 찾고 인증을 수행합니다.
// 성공 시 Application 객체를 반환하고, 실패 시 401 HTTP 에러를 반환합니다.
//
// App Key 비교는 타이밍 공격을 피하기 위해 상수 시간 비교를 사용합니다.
func (a *Authenticator) Authenticate(applicationID, appKey string) (*Application, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	app, ok := a.applications[applicationID]
	if !ok {
		return nil, NewErrInvalidApplicationID(applicationID)
	}

	if subtle.ConstantTimeCompare([]byte(app.appKey), []byte(appKey)) != 1 {
		applog.WithComponentAndFields(component, applog.Fields{
			"application_id":   applicationID,
			"received_app_key": strutil.MaskSensitiveData(appKey),
		}).Warn("APP_KEY 불일치")

		return nil, NewErrInvalidAppKey(applicationID)
	}

	result := app.Application
	return &result, nil
}

// String 로그 출력용 문자열 표현입니다. App Key는 포함하지 않습니다.
func (app *Application) String() string {
	return fmt.Sprintf("%s(%s)", app.Title, app.ID)
}
