// Package logging adapts zap to the service Logger interface.
package logging

import (
	"go.uber.org/zap"
)

// ZapLogger wraps a sugared zap logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a logger for the given environment. Production gets
// JSON output, everything else the development console encoder.
func NewZapLogger(environment string) (*ZapLogger, error) {
	var logger *zap.Logger
	var err error
	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
