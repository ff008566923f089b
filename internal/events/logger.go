package events

import (
	"context"
	"time"

	"doc-summary/internal/shared/telemetry"
)

// Field decorates an event before it is appended.
type Field func(e *Event)

// WithError sets the error category and message.
func WithError(category, message string) Field {
	return func(e *Event) {
		e.ErrorType = category
		e.ErrorMessage = message
	}
}

// WithHTTPStatus sets the HTTP status code returned by the completion service.
func WithHTTPStatus(code int) Field {
	return func(e *Event) {
		e.HTTPStatus = code
	}
}

// Logger stamps events with the workflow name and time and hands them to a sink.
type Logger struct {
	sink     Sink
	workflow string
	now      func() time.Time
}

// NewLogger returns a Logger writing to sink. A nil sink discards events.
func NewLogger(sink Sink, workflow string) *Logger {
	return &Logger{sink: sink, workflow: workflow, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	l.now = now
	return l
}

// Log appends one event. A failing sink is reported on the diagnostic log and
// otherwise ignored so the job keeps running.
func (l *Logger) Log(ctx context.Context, jobID string, step Step, status Status, fields ...Field) {
	if l == nil || l.sink == nil {
		return
	}
	e := Event{
		Timestamp:    FormatTimestamp(l.now()),
		WorkflowName: l.workflow,
		JobID:        jobID,
		Step:         step,
		Status:       status,
	}
	for _, f := range fields {
		f(&e)
	}
	// Failure events of a cancelled job must still be recorded.
	if err := l.sink.Append(context.WithoutCancel(ctx), e); err != nil {
		telemetry.Error("event append failed", map[string]any{
			"job_id": jobID,
			"step":   string(step),
			"error":  err.Error(),
		})
	}
}
