package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/omnibus-server/internal/catalog"
	"github.com/darkkaiser/omnibus-server/internal/config"
	"github.com/darkkaiser/omnibus-server/internal/history"
	"github.com/darkkaiser/omnibus-server/internal/pkg/version"
	"github.com/darkkaiser/omnibus-server/internal/pricing"
	"github.com/darkkaiser/omnibus-server/internal/service"
	"github.com/darkkaiser/omnibus-server/internal/service/alert"
	"github.com/darkkaiser/omnibus-server/internal/service/api"
	"github.com/darkkaiser/omnibus-server/internal/service/api/handler/system"
	"github.com/darkkaiser/omnibus-server/internal/service/display"
	"github.com/darkkaiser/omnibus-server/internal/service/recorder"
	"github.com/darkkaiser/omnibus-server/internal/service/scheduler"
	"github.com/darkkaiser/omnibus-server/internal/storage"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	banner = `
   ___                   _  _                 ____
  / _ \  _ __ ___   _ __  (_)| |__   _   _  ___ / ___|   ___  _ __ __   __  ___  _ __
 | | | || '_ ` + "`" + ` _ \ | '_ \ | || '_ \ | | | |/ __|\___ \  / _ \| '__|\ \ / / / _ \| '__|
 | |_| || | | | | || | | || || |_) || |_| |\__ \ ___) ||  __/| |    \ V / |  __/| |
  \___/ |_| |_| |_||_| |_||_||_.__/  \__,_||___/|____/  \___||_|     \_/   \___||_|
                                                             %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	// .env 파일이 있으면 환경 변수로 로드한다 (OMNIBUS_ 접두사 오버라이드용, 없어도 무방)
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 권장 설정 미준수 항목 진단
	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 4. 데이터베이스 연결 및 스키마 마이그레이션
	db, err := storage.Open(&appConfig.Database, appConfig.Debug)
	if err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Fatal("데이터베이스 연결 실패로 프로그램을 종료합니다")
	}
	defer func() {
		if err := storage.Close(db); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("데이터베이스 연결 종료 실패")
		}
	}()

	models := append(catalog.Models(), history.Models()...)
	if err := storage.Migrate(db, models...); err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Fatal("데이터베이스 스키마 마이그레이션 실패로 프로그램을 종료합니다")
	}

	// 5. 도메인 구성요소 생성
	catalogStore := catalog.NewStore(db)
	historyStore := history.NewStore(db)

	engine := pricing.NewEngine(catalogStore)
	priceRecorder := recorder.New(catalogStore, historyStore, engine, appConfig.Omnibus)
	renderer := display.NewRenderer(engine, historyStore, catalogStore, appConfig.Omnibus)

	alertSender, err := alert.NewSender(&appConfig.Alert)
	if err != nil {
		applog.WithComponentAndFields("main", log.Fields{
			"error": err,
		}).Fatal("알림 전송자 초기화 실패로 프로그램을 종료합니다")
	}

	// 6. 서비스를 생성하고 초기화한다.
	schedulerService := scheduler.NewService(&appConfig.Sweep, priceRecorder, alertSender)
	apiService := api.NewService(appConfig, api.Dependencies{
		HistoryStore: historyStore,
		Snapshotter:  priceRecorder,
		Renderer:     renderer,
		Sweeper:      priceRecorder,
		HealthCheckers: map[string]system.DependencyChecker{
			"database": databaseChecker(db),
		},
	}, alertSender, buildInfo)

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{schedulerService, apiService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}

// databaseChecker 헬스체크에서 사용할 데이터베이스 상태 확인 함수를 반환합니다.
func databaseChecker(db *gorm.DB) system.DependencyChecker {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
