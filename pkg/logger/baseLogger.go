package logger

import (
	"sync"

	"go.uber.org/zap"
)

type BaseLogger struct {
	mu     sync.Mutex
	prefix string
	sugar  *zap.SugaredLogger
}

func NewLogger(prefix string) *BaseLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	return &BaseLogger{
		prefix: prefix,
		sugar:  zap.Must(cfg.Build()).Sugar(),
	}
}

func (l *BaseLogger) Log(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar.Infof(l.prefix+" "+format, v...)
}

func (l *BaseLogger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar.Errorf(l.prefix+" "+format, v...)
}

func (l *BaseLogger) WithPrefix(extraPrefix string) *BaseLogger {
	return &BaseLogger{
		prefix: l.prefix + " " + extraPrefix,
		sugar:  l.sugar,
	}
}

func (l *BaseLogger) SetPrefix(prefix string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = prefix
}

func (l *BaseLogger) Sync() {
	_ = l.sugar.Sync()
}
