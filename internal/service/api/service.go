// Package api 관리용 REST API 서버의 생명주기를 관리합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/pkg/version"
	"github.com/darkkaiser/omnibus-server/internal/service/alert"
	apiauth "github.com/darkkaiser/omnibus-server/internal/service/api/auth"
	"github.com/darkkaiser/omnibus-server/internal/service/api/handler/sweep"
	"github.com/darkkaiser/omnibus-server/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/omnibus-server/internal/service/api/v1"
	v1handler "github.com/darkkaiser/omnibus-server/internal/service/api/v1/handler"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component API 서비스 로그의 컴포넌트 이름
const component = "api.service"

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간 (5초)
const shutdownTimeout = 5 * time.Second

// Dependencies API 서비스가 사용하는 비즈니스 로직 의존성 모음입니다.
type Dependencies struct {
	// HistoryStore 가격 관측 이력의 조회/삭제를 담당하는 저장소
	HistoryStore v1handler.HistoryStore

	// Snapshotter 상품 단위 가격 수집을 담당하는 수집기
	Snapshotter v1handler.Snapshotter

	// Renderer 최저가 정보 HTML 조각을 생성하는 렌더러
	Renderer v1handler.DisplayRenderer

	// Sweeper 외부 Cron 구동 배치 실행기
	Sweeper sweep.Sweeper

	// HealthCheckers 이름별 외부 의존성 상태 확인 함수 (예: "database")
	HealthCheckers map[string]system.DependencyChecker
}

// Service 관리용 API 서버의 생명주기를 관리하는 서비스입니다.
//
// 이 서비스는 다음과 같은 역할을 수행합니다:
//   - Echo 기반 HTTP/HTTPS 서버 시작 및 종료
//   - 미들웨어 체인 설정 (PanicRecovery, RequestID, RateLimiting, HTTPLogger, CORS, Secure)
//   - 인증 관리 (Authenticator 생성 및 API 엔드포인트 보호)
//   - API 엔드포인트 라우팅 설정 (헬스체크, 버전, 배치 구동, 이력 관리, 표시 API)
//   - Graceful Shutdown 지원 (5초 타임아웃)
//   - 서버 에러 처리 및 관리자 알림 전송 (예상치 못한 에러 발생 시)
//
// 서비스는 고루틴으로 실행되며, context를 통해 종료 신호를 받습니다.
type Service struct {
	appConfig *config.AppConfig

	deps Dependencies

	alertSender alert.Sender

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

// NewService Service 인스턴스를 생성합니다.
func NewService(appConfig *config.AppConfig, deps Dependencies, alertSender alert.Sender, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic("AppConfig는 필수입니다")
	}
	if deps.HistoryStore == nil || deps.Snapshotter == nil || deps.Renderer == nil || deps.Sweeper == nil {
		panic("API 서비스의 비즈니스 로직 의존성은 필수입니다")
	}
	if alertSender == nil {
		panic("alert.Sender는 필수입니다")
	}

	return &Service{
		appConfig: appConfig,

		deps: deps,

		alertSender: alertSender,

		buildInfo: buildInfo,

		running:   false,
		runningMu: sync.Mutex{},
	}
}

// Start API 서비스를 시작합니다.
//
// 서비스는 별도의 고루틴에서 실행되며, 다음 작업을 수행합니다:
//  1. 서비스 상태 검증 (중복 실행 방지)
//  2. Echo 서버 설정 (Authenticator, Handler, 미들웨어, 라우트)
//  3. HTTP/HTTPS 서버 시작 (별도 고루틴)
//  4. Shutdown 신호 대기 및 Graceful Shutdown 처리 (5초 타임아웃)
//
// Note: 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: API 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(component).Info("서비스 시작 완료: API 서비스가 정상적으로 초기화되었습니다")

	return nil
}

// runServiceLoop 서비스의 메인 실행 루프입니다.
// 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	// 서버 설정
	e := s.setupServer()

	// HTTP 서버 시작
	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	// Shutdown 대기
	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 인스턴스를 생성하고 모든 설정을 완료합니다.
//
// 다음 순서로 서버를 구성합니다:
//  1. Authenticator 생성 (애플리케이션 인증 관리)
//  2. Handler 생성 (System, Sweep, v1 API 핸들러)
//  3. Echo 서버 생성 (미들웨어 체인, CORS 설정 포함)
//  4. 라우트 등록 (전역 라우트, v1 API 라우트)
func (s *Service) setupServer() *echo.Echo {
	// 1. Authenticator 생성
	authenticator := apiauth.NewAuthenticator(&s.appConfig.API)

	// 2. Handler 생성
	systemHandler := system.NewHandler(s.buildInfo, s.deps.HealthCheckers)
	sweepHandler := sweep.NewHandler(&s.appConfig.Sweep, s.deps.Sweeper)
	v1Handler := v1handler.NewHandler(s.deps.HistoryStore, s.deps.Snapshotter, s.deps.Renderer, s.appConfig.Omnibus.LoggingMode)

	// 3. Echo 서버 생성 (미들웨어 체인 포함)
	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.appConfig.Debug,
		AllowOrigins: s.appConfig.API.CORS.AllowOrigins,
	})

	// 4. 라우트 등록
	RegisterRoutes(e, systemHandler, sweepHandler)
	v1.RegisterRoutes(e, v1Handler, authenticator)

	return e
}

// startHTTPServer HTTP/HTTPS 서버를 시작합니다.
//
// 설정에 따라 TLS 활성화 여부를 결정하며, 서버가 종료되면 done 채널을 닫아
// 대기 중인 고루틴에 신호를 보냅니다.
//
// Note: 이 함수는 블로킹되며, 서버가 종료될 때까지 반환되지 않습니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.API.WS.ListenPort
	applog.WithComponentAndFields(component, applog.Fields{
		"port": port,
	}).Debug("HTTP 서버를 시작합니다")

	var err error
	if s.appConfig.API.WS.TLSServer {
		err = e.StartTLS(
			fmt.Sprintf(":%d", port),
			s.appConfig.API.WS.TLSCertFile,
			s.appConfig.API.WS.TLSKeyFile,
		)
	} else {
		err = e.Start(fmt.Sprintf(":%d", port))
	}

	s.handleServerError(err)
}

// handleServerError HTTP 서버 시작 중 발생한 에러를 처리합니다.
//
// 에러 처리 방식:
//   - nil: 처리하지 않음 (정상 종료)
//   - http.ErrServerClosed: Info 레벨 로깅 (Graceful Shutdown)
//   - 그 외: Error 레벨 로깅 + 관리자 알림 전송 (예상치 못한 에러)
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	// http.ErrServerClosed: Graceful Shutdown 완료
	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("HTTP 서버가 정상적으로 중지되었습니다")
		return
	}

	// 예상치 못한 에러: 로깅 및 알림 전송
	message := "HTTP 서버가 치명적인 오류로 중단되었습니다"
	applog.WithComponentAndFields(component, applog.Fields{
		"port":  s.appConfig.API.WS.ListenPort,
		"error": err,
	}).Error(message)

	s.alertSender.Notify(context.Background(), fmt.Sprintf("%s: %v", message, err), true)
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
//
// 종료 처리 순서:
//  1. 종료 신호 대기 (정상 종료 또는 서버 조기 종료)
//  2. Echo 서버 Shutdown 호출 (5초 타임아웃)
//  3. HTTP 서버 완전 종료 대기
//  4. 서비스 상태 정리 (running 플래그 초기화)
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		// 정상적인 종료 신호 수신
		applog.WithComponent(component).Info("종료 절차 진입: API 서비스 중지 시그널을 수신했습니다")
	case <-httpServerDone:
		// HTTP 서버가 예기치 않게 종료됨 (포트 바인딩 실패, 패닉 등)
		// 이미 종료되었으므로 Shutdown 호출 없이 상태만 정리
		applog.WithComponent(component).Error("HTTP 서버가 예기치 않게 종료되었습니다")

		s.cleanup()

		return
	}

	// Graceful Shutdown 시작 (5초 타임아웃)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("HTTP 서버 Shutdown 중 오류가 발생했습니다")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}
