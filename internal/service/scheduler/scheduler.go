// Package scheduler 가격 이력 수집 배치를 Cron 스케줄에 맞춰 자동으로 실행하는 서비스를 제공합니다.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/service/alert"
	"github.com/darkkaiser/omnibus-server/pkg/cronx"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// sweepTimeout 배치 1회 실행의 최대 허용 시간입니다.
// 상품 수가 많은 매장에서도 충분히 완료될 수 있도록 넉넉하게 잡습니다.
const sweepTimeout = 30 * time.Minute

// Sweeper 가격 이력 수집 배치의 실행을 담당하는 인터페이스입니다.
type Sweeper interface {
	// Sweep 활성 상품의 가격을 수집하고 보존 기간이 지난 이력을 정리합니다.
	// 기록한 관측값 개수와 삭제한 이력 개수를 반환합니다.
	Sweep(ctx context.Context, limit int) (int, int64, error)
}

// Scheduler 설정 파일에 정의된 Cron 스케줄에 따라 가격 이력 수집 배치를 실행하는 서비스입니다.
type Scheduler struct {
	cfg *config.SweepConfig

	cron *cron.Cron

	// sweeper 배치 실행을 요청하는 인터페이스입니다.
	sweeper Sweeper

	// alertSender 배치 실패 시 관리자 알림 전송을 담당하는 인터페이스입니다.
	alertSender alert.Sender

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(cfg *config.SweepConfig, sweeper Sweeper, alertSender alert.Sender) *Scheduler {
	if cfg == nil {
		panic("SweepConfig는 필수입니다")
	}
	if sweeper == nil {
		panic("Sweeper는 필수입니다")
	}
	if alertSender == nil {
		panic("alert.Sender는 필수입니다")
	}

	return &Scheduler{
		cfg: cfg,

		sweeper: sweeper,

		alertSender: alertSender,
	}
}

// Start 스케줄러를 시작하고 가격 이력 수집 배치를 Cron 엔진에 등록합니다.
//
// 매개변수:
//   - serviceStopCtx: 서비스 종료 신호를 받기 위한 Context
//   - serviceStopWG: 서비스 종료 완료를 알리기 위한 WaitGroup
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.sweeper == nil {
		serviceStopWG.Done()
		return ErrSweeperNotInitialized
	}
	if s.alertSender == nil {
		serviceStopWG.Done()
		return ErrAlertSenderNotInitialized
	}

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// 1. Cron 엔진 초기화
	// - StandardParser: 초 단위 스케줄링 지원 (6개 필드: 초 분 시 일 월 요일)
	// - Recover: Panic 발생 시 복구하여 다음 스케줄에 영향을 주지 않음
	// - SkipIfStillRunning: 이전 배치가 끝나지 않았으면 다음 배치를 건너뜀
	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	// 2. 배치 등록
	if err := s.registerSweepJob(serviceStopCtx); err != nil {
		serviceStopWG.Done()
		return err
	}

	// 3. 스케줄러 시작
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"registered_schedules": len(s.cron.Entries()),
		"runnable":             s.cfg.Scheduler.Runnable,
		"time_spec":            s.cfg.Scheduler.TimeSpec,
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	// 4. 종료 신호 대기 (고루틴)
	// 서비스 생명주기 컨텍스트(serviceStopCtx)의 취소 이벤트를 비동기로 모니터링합니다.
	// 종료 시그널 수신 시 Stop() 메서드를 호출하여 리소스를 안전하게 해제합니다.
	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 안전하게 중지합니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	// Cron 엔진 중지 및 실행 중인 배치 완료 대기
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// registerSweepJob 설정 파일의 스케줄 정보에 따라 가격 이력 수집 배치를 Cron 엔진에 등록합니다.
// Runnable 플래그가 꺼져 있으면 아무것도 등록하지 않으므로, 외부 Cron(/cron 엔드포인트)만으로
// 배치를 구동하는 운영 형태도 지원합니다.
func (s *Scheduler) registerSweepJob(serviceStopCtx context.Context) error {
	if !s.cfg.Scheduler.Runnable {
		applog.WithComponent(component).Info("내장 스케줄이 비활성화되어 있어 배치를 등록하지 않습니다")
		return nil
	}

	// 클로저 캡처 문제 방지를 위해 로컬 변수에 재할당
	timeSpec := s.cfg.Scheduler.TimeSpec
	batchLimit := s.cfg.BatchLimitCount()

	_, err := s.cron.AddFunc(timeSpec, func() {
		// 배치 실행의 생명주기를 서비스 종료 시그널(serviceStopCtx)과 분리합니다.
		// Graceful Shutdown 시 cron.Stop()이 실행 중인 배치의 완료를 대기하므로,
		// 배치 도중 컨텍스트 취소로 인한 강제 중단을 방지하고 데이터 정합성을 보장합니다.
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		recorded, purged, err := s.sweeper.Sweep(ctx, batchLimit)
		if err != nil {
			message := "배치 실행 실패: 가격 이력 수집 중 오류가 발생했습니다"
			s.logAndNotifyError(serviceStopCtx, message, err)
			return
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"recorded": recorded,
			"purged":   purged,
		}).Info("가격 이력 수집 배치가 정상적으로 완료되었습니다")
	})

	if err != nil {
		return NewErrInvalidCronSpec(timeSpec, err)
	}

	return nil
}

// logAndNotifyError 배치 실행 중 발생한 오류를 로깅하고 관리자에게 알림을 전송합니다.
func (s *Scheduler) logAndNotifyError(serviceStopCtx context.Context, message string, err error) {
	fields := applog.Fields{
		"time_spec": s.cfg.Scheduler.TimeSpec,
	}
	if err != nil {
		fields["error"] = err

		// 에러 객체가 있으면 메시지에 상세 내용 추가
		message = fmt.Sprintf("%s: %v", message, err)
	}

	applog.WithComponentAndFields(component, fields).Error(message)

	s.alertSender.Notify(serviceStopCtx, message, true)
}
