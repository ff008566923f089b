package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"doc-summary/internal/shared/util"
)

// Generator performs one exchange with the completion service and returns the
// generated text. Failures are reported as *CallError.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the structured summary. Status, Summary and BulletPoints carry the
// service's JSON values unchanged: nil means the key was absent, and a JSON
// null counts as present.
type Result struct {
	Status       json.RawMessage `json:"status,omitempty"`
	Summary      json.RawMessage `json:"summary,omitempty"`
	BulletPoints json.RawMessage `json:"bullet_points,omitempty"`
	WordCount    *int            `json:"word_count,omitempty"`
	HashPreview  *string         `json:"hash_preview,omitempty"`
}

// Derive recomputes word_count and hash_preview from the summary, replacing
// whatever was there before. Both are cleared when the summary is absent or
// not a string.
func (r *Result) Derive() {
	r.WordCount, r.HashPreview = nil, nil
	summary, ok := r.SummaryString()
	if !ok {
		return
	}
	wc := util.WordCount(summary)
	hp := util.HashPreview(summary)
	r.WordCount = &wc
	r.HashPreview = &hp
}

// SummaryString returns the summary when it is a JSON string.
func (r Result) SummaryString() (string, bool) {
	return JSONString(r.Summary)
}

// SummaryText returns the summary for display: the string itself, the raw
// JSON for any other type, or "" when absent.
func (r Result) SummaryText() string {
	if s, ok := r.SummaryString(); ok {
		return s
	}
	return string(r.Summary)
}

// Bullets returns the bullet_points elements when the value is a JSON array.
func (r Result) Bullets() ([]json.RawMessage, bool) {
	raw := bytes.TrimSpace(r.BulletPoints)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// JSONString decodes raw when it holds a JSON string.
func JSONString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// NewResult builds a complete result with derived fields filled in.
func NewResult(status, summary string, bullets ...string) Result {
	r := Result{
		Status:       rawJSON(status),
		Summary:      rawJSON(summary),
		BulletPoints: rawJSON(append([]string{}, bullets...)),
	}
	r.Derive()
	return r
}

func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("llm: encode %T: %v", v, err))
	}
	return b
}

// Kind classifies a failed call attempt.
type Kind string

const (
	KindTransport Kind = "TransportError"
	KindServer    Kind = "ServerError"
	KindClient    Kind = "ClientError"
	KindMalformed Kind = "MalformedOutputError"
	KindProtocol  Kind = "ProtocolError"
)

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransport, KindServer, KindMalformed:
		return true
	default:
		return false
	}
}

// Category is the error_type recorded in the event log.
func (k Kind) Category() string {
	switch k {
	case KindTransport:
		return "network_error"
	case KindServer, KindClient:
		return "http_error"
	case KindMalformed:
		return "json_parse_error"
	default:
		return "protocol_error"
	}
}

// CallError is the typed outcome of a failed call attempt.
type CallError struct {
	Kind       Kind
	StatusCode int
	// Attempts is set by Provider when the retry budget was spent.
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Attempts > 1 {
		return fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	return msg
}

func (e *CallError) Unwrap() error {
	return e.Err
}
