// Package logging adapts zap to the Temporal SDK logger interface so
// worker, client, and activity logs share one structured sink.
package logging

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// zapAdapter implements go.temporal.io/sdk/log.Logger on top of a
// zap.SugaredLogger. Temporal passes alternating key/value pairs,
// which matches Sugar's *w methods directly.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

// NewTemporalLogger wraps a zap logger for use as a Temporal SDK
// logger. The extra CallerSkip keeps call sites pointing at the code
// that logged rather than this adapter.
func NewTemporalLogger(l *zap.Logger) log.Logger {
	return &zapAdapter{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (a *zapAdapter) Debug(msg string, keyvals ...interface{}) { a.sugar.Debugw(msg, keyvals...) }
func (a *zapAdapter) Info(msg string, keyvals ...interface{})  { a.sugar.Infow(msg, keyvals...) }
func (a *zapAdapter) Warn(msg string, keyvals ...interface{})  { a.sugar.Warnw(msg, keyvals...) }
func (a *zapAdapter) Error(msg string, keyvals ...interface{}) { a.sugar.Errorw(msg, keyvals...) }
