// Package storage 가격 이력과 상품 카탈로그를 보관하는 MySQL 데이터베이스의
// 커넥션 관리와 스키마 마이그레이션을 담당합니다.
package storage

import (
	"time"

	"github.com/darkkaiser/omnibus-server/internal/config"
	apperrors "github.com/darkkaiser/omnibus-server/internal/pkg/errors"
	applog "github.com/darkkaiser/omnibus-server/pkg/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const component = "storage"

// Open 설정된 DSN으로 데이터베이스에 연결하고 커넥션 풀을 구성합니다.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 연결에 실패했습니다")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀 설정에 실패했습니다")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	applog.WithComponent(component).Debug("데이터베이스 연결이 완료되었습니다")

	return db, nil
}

// Migrate 애플리케이션이 사용하는 모든 테이블의 스키마를 생성하거나 갱신합니다.
func Migrate(db *gorm.DB, models ...interface{}) error {
	started := time.Now()

	if err := db.AutoMigrate(models...); err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 스키마 마이그레이션에 실패했습니다")
	}

	applog.WithComponentAndFields(component, map[string]interface{}{
		"elapsed": time.Since(started).String(),
		"tables":  len(models),
	}).Debug("데이터베이스 스키마 마이그레이션이 완료되었습니다")

	return nil
}

// Close 데이터베이스 커넥션 풀을 닫습니다. 애플리케이션 종료 시 호출됩니다.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 커넥션 풀 조회에 실패했습니다")
	}
	if err := sqlDB.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "데이터베이스 연결 종료에 실패했습니다")
	}
	return nil
}
