// Package validation checks a completion result before it is persisted.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"doc-summary/internal/events"
	"doc-summary/internal/llm"
	"doc-summary/internal/shared/metrics"
	"doc-summary/internal/shared/util"
)

// Failure categories recorded on RESPONSE_VALIDATION_FAILED.
const (
	CategoryMissingField      = "missing_field"
	CategoryInvalidBullets    = "invalid_bullet_points"
	CategoryWordCountMismatch = "word_count_mismatch"
	CategoryHashMismatch      = "hash_mismatch"
	CategorySchemaViolation   = "schema_violation"
)

const requiredBulletPoints = 3

// Outcome is the verdict for one result.
type Outcome struct {
	Valid    bool
	Category string
	Message  string
}

// Validator runs the ordered result checks and logs the verdict.
type Validator struct {
	events  *events.Logger
	schema  *resultSchema
	metrics *metrics.Metrics
}

// NewValidator returns a Validator. With strict set, results that pass the
// basic checks must also satisfy the result JSON schema.
func NewValidator(ev *events.Logger, strict bool, m *metrics.Metrics) (*Validator, error) {
	v := &Validator{events: ev, metrics: m}
	if strict {
		s, err := compileResultSchema()
		if err != nil {
			return nil, err
		}
		v.schema = s
	}
	return v, nil
}

// Validate checks r, stopping at the first failure.
func (v *Validator) Validate(ctx context.Context, r llm.Result, jobID string) Outcome {
	out := check(r)
	if out.Valid && v.schema != nil {
		out = v.schema.check(r)
	}
	if !out.Valid {
		v.metrics.IncValidationFailure(out.Category)
		v.events.Log(ctx, jobID, events.StepResponseValidationFailed, events.StatusError,
			events.WithError(out.Category, out.Message))
		return out
	}
	v.events.Log(ctx, jobID, events.StepResponseValidationSuccess, events.StatusSuccess)
	return out
}

func check(r llm.Result) Outcome {
	present := []struct {
		name string
		ok   bool
	}{
		{"status", r.Status != nil},
		{"summary", r.Summary != nil},
		{"bullet_points", r.BulletPoints != nil},
		{"word_count", r.WordCount != nil},
		{"hash_preview", r.HashPreview != nil},
	}
	for _, f := range present {
		if !f.ok {
			return fail(CategoryMissingField, "Missing required field: %s", f.name)
		}
	}

	bullets, ok := r.Bullets()
	if !ok {
		return fail(CategoryInvalidBullets, "bullet_points must be a list of exactly %d items, got %s", requiredBulletPoints, jsonType(r.BulletPoints))
	}
	if n := len(bullets); n != requiredBulletPoints {
		return fail(CategoryInvalidBullets, "bullet_points must be exactly %d items, got %d", requiredBulletPoints, n)
	}

	summary, ok := r.SummaryString()
	if !ok {
		return fail(CategoryWordCountMismatch, "summary must be a string, got %s", jsonType(r.Summary))
	}
	if want := util.WordCount(summary); *r.WordCount != want {
		return fail(CategoryWordCountMismatch, "word_count mismatch: expected %d, got %d", want, *r.WordCount)
	}
	if want := util.HashPreview(summary); *r.HashPreview != want {
		return fail(CategoryHashMismatch, "hash_preview mismatch: expected %s, got %s", want, *r.HashPreview)
	}
	return Outcome{Valid: true}
}

// jsonType names the JSON type of raw for failure messages.
func jsonType(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "number"
	}
}

func fail(category, format string, args ...any) Outcome {
	return Outcome{Category: category, Message: fmt.Sprintf(format, args...)}
}
