package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConsoleSinkBanner(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf)
	p := NewPayload(time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC), "job-1", "Validation failed after 2 attempts", "Response schema validation failed")

	if err := sink.Send(context.Background(), p); err != nil {
		t.Fatalf("Send: %v", err)
	}

	rule := strings.Repeat("=", 60)
	out := buf.String()
	if !strings.HasPrefix(out, "\n"+rule+"\nALERT: WORKFLOW FAILURE\n"+rule+"\n{\n") {
		t.Fatalf("unexpected banner header:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n"+rule+"\n\n") {
		t.Fatalf("unexpected banner footer:\n%s", out)
	}
	if !strings.Contains(out, `  "failure_reason": "Validation failed after 2 attempts"`) {
		t.Fatalf("payload not indented with two spaces:\n%s", out)
	}

	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	var got Payload
	if err := json.Unmarshal([]byte(out[start:end+1]), &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got != p {
		t.Fatalf("payload mismatch: got %+v want %+v", got, p)
	}
	if got.Timestamp != "2026-01-30T22:00:00.000000Z" {
		t.Fatalf("unexpected timestamp %q", got.Timestamp)
	}
}

type recordingSink struct {
	sent []Payload
	err  error
}

func (r *recordingSink) Send(_ context.Context, p Payload) error {
	r.sent = append(r.sent, p)
	return r.err
}

func TestMultiSink(t *testing.T) {
	ok := &recordingSink{}
	bad := &recordingSink{err: errors.New("boom")}
	m := MultiSink{bad, nil, ok}

	err := m.Send(context.Background(), Payload{JobID: "job-1"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(ok.sent) != 1 || len(bad.sent) != 1 {
		t.Fatalf("expected every sink to be attempted")
	}
}
