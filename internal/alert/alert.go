// Package alert delivers the terminal failure notification of a job.
package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"doc-summary/internal/events"
)

// Payload describes why a job failed.
type Payload struct {
	Timestamp        string `json:"timestamp"`
	JobID            string `json:"job_id"`
	FailureReason    string `json:"failure_reason"`
	LastErrorDetails string `json:"last_error_details"`
}

// NewPayload stamps a payload with the current UTC time.
func NewPayload(now time.Time, jobID, reason, details string) Payload {
	return Payload{
		Timestamp:        events.FormatTimestamp(now),
		JobID:            jobID,
		FailureReason:    reason,
		LastErrorDetails: details,
	}
}

// Sink receives failure notifications.
type Sink interface {
	Send(ctx context.Context, p Payload) error
}

const bannerWidth = 60

// ConsoleSink prints a framed banner with the payload as indented JSON.
type ConsoleSink struct {
	W io.Writer
}

// NewConsoleSink writes banners to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{W: w}
}

// Send writes the banner.
func (c *ConsoleSink) Send(_ context.Context, p Payload) error {
	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	rule := strings.Repeat("=", bannerWidth)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(rule + "\n")
	b.WriteString("ALERT: WORKFLOW FAILURE\n")
	b.WriteString(rule + "\n")
	b.Write(body)
	b.WriteString("\n")
	b.WriteString(rule + "\n\n")
	if _, err := io.WriteString(c.W, b.String()); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	return nil
}

// MultiSink sends to every sink, joining errors.
type MultiSink []Sink

// Send attempts delivery on every sink.
func (m MultiSink) Send(ctx context.Context, p Payload) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
