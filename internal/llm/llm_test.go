package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
		category  string
	}{
		{kind: KindTransport, retryable: true, category: "network_error"},
		{kind: KindServer, retryable: true, category: "http_error"},
		{kind: KindClient, retryable: false, category: "http_error"},
		{kind: KindMalformed, retryable: true, category: "json_parse_error"},
		{kind: KindProtocol, retryable: false, category: "protocol_error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Retryable(); got != tt.retryable {
				t.Fatalf("Retryable() = %v, want %v", got, tt.retryable)
			}
			if got := tt.kind.Category(); got != tt.category {
				t.Fatalf("Category() = %q, want %q", got, tt.category)
			}
		})
	}
}

func TestCallErrorMessage(t *testing.T) {
	base := errors.New("HTTP 500 from Gemini")
	ce := &CallError{Kind: KindServer, StatusCode: 500, Err: base}
	if ce.Error() != "HTTP 500 from Gemini" {
		t.Fatalf("unexpected message %q", ce.Error())
	}
	ce.Attempts = 3
	if !strings.HasSuffix(ce.Error(), "after 3 attempts") {
		t.Fatalf("expected attempts suffix, got %q", ce.Error())
	}
	if !errors.Is(ce, base) {
		t.Fatalf("expected Unwrap to expose the cause")
	}
}

func TestDeriveOverridesServiceValues(t *testing.T) {
	bogusCount := 99
	bogusHash := "deadbeef"
	r := Result{Summary: json.RawMessage(`"hello"`), WordCount: &bogusCount, HashPreview: &bogusHash}
	r.Derive()
	if *r.WordCount != 1 {
		t.Fatalf("expected word_count 1, got %d", *r.WordCount)
	}
	if *r.HashPreview != "2cf24dba" {
		t.Fatalf("expected hash_preview 2cf24dba, got %s", *r.HashPreview)
	}
}

func TestDeriveWithoutSummary(t *testing.T) {
	var r Result
	r.Derive()
	if r.WordCount != nil || r.HashPreview != nil {
		t.Fatalf("expected no derived fields without summary")
	}
}

func TestDeriveClearsForNonStringSummary(t *testing.T) {
	bogusCount := 3
	r := Result{Summary: json.RawMessage(`12`), WordCount: &bogusCount}
	r.Derive()
	if r.WordCount != nil || r.HashPreview != nil {
		t.Fatalf("expected derived fields cleared, got %v %v", r.WordCount, r.HashPreview)
	}
	if r.SummaryText() != "12" {
		t.Fatalf("SummaryText() = %q", r.SummaryText())
	}
}

func TestBullets(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		wantN  int
	}{
		{raw: `["a","b","c"]`, wantOK: true, wantN: 3},
		{raw: ` [1, {"x": 2}] `, wantOK: true, wantN: 2},
		{raw: `[]`, wantOK: true, wantN: 0},
		{raw: `null`},
		{raw: `"a,b,c"`},
		{raw: `{"0":"a"}`},
		{raw: ``},
	}

	for _, tt := range tests {
		items, ok := Result{BulletPoints: json.RawMessage(tt.raw)}.Bullets()
		if ok != tt.wantOK || len(items) != tt.wantN {
			t.Fatalf("Bullets(%q) = %d items, ok=%v; want %d, ok=%v", tt.raw, len(items), ok, tt.wantN, tt.wantOK)
		}
	}
}

func TestNewResultEncodesFields(t *testing.T) {
	r := NewResult("ok", "hello", "a", "b", "c")
	if string(r.Status) != `"ok"` || string(r.BulletPoints) != `["a","b","c"]` {
		t.Fatalf("unexpected raw fields %s %s", r.Status, r.BulletPoints)
	}
	if s, ok := r.SummaryString(); !ok || s != "hello" {
		t.Fatalf("SummaryString() = %q, %v", s, ok)
	}
	if empty := NewResult("ok", "x"); string(empty.BulletPoints) != "[]" {
		t.Fatalf("expected empty array, got %s", empty.BulletPoints)
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	doc := "# Title\n\nBody with {braces} and ```fences```."
	prompt := BuildSummaryPrompt(doc)
	if !strings.HasSuffix(prompt, doc) {
		t.Fatalf("expected prompt to end with the document verbatim")
	}
	for _, want := range []string{`"status"`, `"summary"`, `"bullet_points"`, "Do NOT include word_count or hash_preview"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, documentPlaceholder) {
		t.Fatalf("placeholder left in prompt")
	}
}
