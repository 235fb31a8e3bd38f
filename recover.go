package todoes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrorLogger receives the failures the client swallows. The op argument is the label of the failed operation,
// e.g., "getTodoes" or "getTodo id=42".
type ErrorLogger interface {
	Record(op string, err error)
}

// ErrorLoggerFunc adapts a function to the ErrorLogger interface.
type ErrorLoggerFunc func(op string, err error)

// Record implements ErrorLogger.
func (f ErrorLoggerFunc) Record(op string, err error) {
	f(op, err)
}

type logrusErrorLogger struct {
	entry *log.Entry
}

// NewLogrusErrorLogger returns an ErrorLogger logging at error level to the given entry, or to the standard
// logrus logger if entry is nil. This is the client's default.
func NewLogrusErrorLogger(entry *log.Entry) ErrorLogger {
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &logrusErrorLogger{entry: entry}
}

func (l *logrusErrorLogger) Record(op string, err error) {
	fields := log.Fields{
		"op":    op,
		"cause": err,
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		if rerr.RequestID != "" {
			fields["request_id"] = rerr.RequestID
		}
		if rerr.StatusCode != 0 {
			fields["code"] = rerr.StatusCode
		}
	}
	l.entry.WithFields(fields).Error("Request failed")
}

// recovered wraps call so that it can not fail: on error, the error is recorded with the client's error logger
// and the value produced by fallback is returned instead.
func recovered[T any](c *Client, op string, fallback func() T, call func(context.Context) (T, error)) func(context.Context) T {
	return func(ctx context.Context) T {
		start := time.Now()
		v, err := call(ctx)
		if err != nil {
			c.errors.Record(op, err)
			c.metrics.observe(metricLabel(op), outcomeFailed, time.Since(start))
			return fallback()
		}
		c.metrics.observe(metricLabel(op), outcomeOK, time.Since(start))
		return v
	}
}

// metricLabel drops the arguments from an operation label, e.g., "getTodo id=42" becomes "getTodo".
func metricLabel(op string) string {
	if i := strings.IndexByte(op, ' '); i >= 0 {
		return op[:i]
	}
	return op
}

// Fallbacks.

func noTodo() *Todo {
	return nil
}

func noTodoes() []*Todo {
	return []*Todo{}
}

func noResponse() json.RawMessage {
	return nil
}
