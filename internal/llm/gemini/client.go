package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doc-summary/internal/llm"
)

var apiBaseURL = "https://generativelanguage.googleapis.com/v1/models"

const maxErrorBody = 200

// Client implements llm.Generator using the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a Gemini client. A non-positive timeout means 30s.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey: apiKey,
		model:  strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type part struct {
	Text *string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(apiBaseURL, "/"), c.model)
}

// Generate sends prompt as a single user turn and returns the first
// candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: &prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.1,
			TopK:            1,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &llm.CallError{Kind: llm.KindProtocol, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", &llm.CallError{Kind: llm.KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", &llm.CallError{Kind: llm.KindTransport, Err: fmt.Errorf("gemini request timeout: %w", err)}
		}
		return "", &llm.CallError{Kind: llm.KindTransport, Err: fmt.Errorf("gemini request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.CallError{Kind: llm.KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read Gemini response: %w", err)}
	}

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		return "", &llm.CallError{
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d from Gemini: %s", resp.StatusCode, errorDetail(body)),
		}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.CallError{Kind: llm.KindMalformed, Err: fmt.Errorf("undecodable Gemini response: %w", err)}
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil ||
		len(parsed.Candidates[0].Content.Parts) == 0 || parsed.Candidates[0].Content.Parts[0].Text == nil {
		return "", unexpectedStructure(resp.StatusCode)
	}
	return *parsed.Candidates[0].Content.Parts[0].Text, nil
}

// classifyStatus maps a non-2xx status to an error kind.
func classifyStatus(code int) (llm.Kind, bool) {
	switch {
	case code >= 200 && code < 300:
		return "", false
	case code == http.StatusTooManyRequests || code >= 500:
		return llm.KindServer, true
	case code >= 400:
		return llm.KindClient, true
	default:
		return llm.KindProtocol, true
	}
}

func errorDetail(body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return "empty body"
	}
	return text
}

func unexpectedStructure(code int) error {
	return &llm.CallError{Kind: llm.KindProtocol, StatusCode: code, Err: errors.New("unexpected response structure")}
}
