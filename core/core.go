package core

import (
	"github.com/google/uuid"

	"github.com/hupe1980/tickmesh/logging"
)

// NewID returns a random identifier used for ticks.
func NewID() string { return uuid.NewString() }

// loggerAdapter gives TickContext its Log* helpers over a logger that is
// never nil.
type loggerAdapter struct {
	logger logging.Logger
}

func newLoggerAdapter(l logging.Logger) *loggerAdapter {
	if l == nil {
		l = logging.NoOpLogger{}
	}
	return &loggerAdapter{logger: l}
}

// Logger returns the tick's logger.
func (l *loggerAdapter) Logger() logging.Logger { return l.logger }

// EntityLogger returns the tick's logger scoped to entity. Loggers that
// cannot carry an entity are returned as is.
func (l *loggerAdapter) EntityLogger(entity string) logging.Logger {
	if tl, ok := l.logger.(*logging.TickLogger); ok {
		return tl.WithEntity(entity)
	}
	return l.logger
}

// LogDebug logs a debug message.
func (l *loggerAdapter) LogDebug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// LogInfo logs an info message.
func (l *loggerAdapter) LogInfo(msg string, args ...any) { l.logger.Info(msg, args...) }

// LogWarn logs a warning message.
func (l *loggerAdapter) LogWarn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// LogError logs an error message.
func (l *loggerAdapter) LogError(msg string, args ...any) { l.logger.Error(msg, args...) }

// LogOutcome logs the result of ticking a node of the given kind at debug
// level, adding the error when the node failed.
func (l *loggerAdapter) LogOutcome(kind, node string, err error, args ...any) {
	attrs := append([]any{"kind", kind, "node", node}, args...)
	if err != nil {
		l.logger.Debug("Node failed", append(attrs, "error", err.Error())...)
		return
	}
	l.logger.Debug("Node succeeded", attrs...)
}
