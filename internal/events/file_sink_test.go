package events

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "workflow.log")

	sink, err := OpenFileSink(path)
	if err != nil {
		t.Fatalf("OpenFileSink: %v", err)
	}
	logger := NewLogger(sink, "gemini_md_summary").WithClock(fixedClock)
	ctx := context.Background()
	logger.Log(ctx, "job-1", StepWorkflowStarted, StatusInfo)
	logger.Log(ctx, "job-1", StepAPICallFailed, StatusError, WithError("http_error", "HTTP 500 after 3 retries"), WithHTTPStatus(500))
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// A second run appends rather than truncating.
	sink, err = OpenFileSink(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	NewLogger(sink, "gemini_md_summary").Log(ctx, "job-2", StepWorkflowStarted, StatusInfo)
	_ = sink.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("line is not JSON: %q: %v", scanner.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	first := lines[0]
	for _, key := range []string{"error_type", "error_message", "http_status"} {
		if _, ok := first[key]; ok {
			t.Fatalf("optional field %s should be omitted: %v", key, first)
		}
	}
	if first["timestamp"] != "2026-01-30T21:00:00.123456Z" {
		t.Fatalf("unexpected timestamp %v", first["timestamp"])
	}
	if !strings.HasSuffix(lines[2]["timestamp"].(string), "Z") {
		t.Fatalf("timestamp must end with Z: %v", lines[2]["timestamp"])
	}

	second := lines[1]
	if second["step"] != "API_CALL_FAILED" || second["status"] != "error" {
		t.Fatalf("unexpected second line %v", second)
	}
	if second["http_status"] != float64(500) || second["error_type"] != "http_error" {
		t.Fatalf("optional fields missing: %v", second)
	}
	if lines[2]["job_id"] != "job-2" {
		t.Fatalf("expected appended job-2 line, got %v", lines[2])
	}
}

func TestFileSinkClosed(t *testing.T) {
	sink, err := OpenFileSink(filepath.Join(t.TempDir(), "workflow.log"))
	if err != nil {
		t.Fatalf("OpenFileSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Append(context.Background(), Event{JobID: "job-1"}); err == nil {
		t.Fatalf("expected error appending to closed sink")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
