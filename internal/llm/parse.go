package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const fence = "```"

// StripCodeFences removes a leading code fence (with an optional language
// tag) and a trailing fence, then trims surrounding whitespace.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimLeftFunc(s[len(fence):], isFenceTag)
	}
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

func isFenceTag(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '+' || r == '.'
}

// ParseResult unwraps the service text and decodes it as a JSON object. Only
// text that is not a JSON object is a MalformedOutputError; field types are
// left to validation. Service-supplied word_count and hash_preview are
// discarded because Derive recomputes them.
func ParseResult(text string) (Result, error) {
	body := StripCodeFences(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Result{}, &CallError{Kind: KindMalformed, Err: fmt.Errorf("malformed JSON from Gemini: %w", err)}
	}
	if fields == nil {
		return Result{}, &CallError{Kind: KindMalformed, Err: errors.New("malformed JSON from Gemini: expected an object, got null")}
	}

	return Result{
		Status:       fields["status"],
		Summary:      fields["summary"],
		BulletPoints: fields["bullet_points"],
	}, nil
}
