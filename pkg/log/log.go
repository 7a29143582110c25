// Package log 애플리케이션 전역 로깅 시스템을 제공합니다.
//
// logrus 위에 파일 로테이션(lumberjack)과 레벨별 로그 파일 분리(Main/Critical/Verbose)를
// 구성하며, 모든 로그에 component 필드를 일관되게 추가하기 위한 헬퍼를 제공합니다.
package log

import (
	log "github.com/sirupsen/logrus"
)

// SetDebugMode 디버그 모드 여부에 따라 전역 로그 레벨을 조정합니다.
func SetDebugMode(debug bool) {
	if debug {
		log.SetLevel(log.TraceLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// StandardLogger 전역 logrus 로거를 반환합니다.
// 외부 라이브러리(cron, echo 등)에 로거를 연결할 때 사용합니다.
func StandardLogger() *log.Logger {
	return log.StandardLogger()
}

// WithFields 주어진 필드를 포함한 로그 Entry를 반환합니다.
func WithFields(fields log.Fields) *log.Entry {
	return log.WithFields(fields)
}

// WithComponent component 필드를 포함한 로그 Entry를 반환합니다.
func WithComponent(component string) *log.Entry {
	return log.WithFields(log.Fields{
		"component": component,
	})
}

// WithComponentAndFields component 필드와 추가 필드를 포함한 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields log.Fields) *log.Entry {
	newFields := make(log.Fields, len(fields)+1)
	for k, v := range fields {
		newFields[k] = v
	}
	newFields["component"] = component
	return log.WithFields(newFields)
}
