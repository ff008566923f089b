package llm

import (
	"context"
	"errors"
	"fmt"

	"doc-summary/internal/events"
	"doc-summary/internal/shared/metrics"
)

// Provider turns document content into a validated-shape Result, retrying
// transient failures according to its RetryPolicy.
type Provider struct {
	gen     Generator
	events  *events.Logger
	policy  RetryPolicy
	sleeper Sleeper
	metrics *metrics.Metrics
}

// NewProvider wires a Provider. A nil sleeper uses TimerSleeper.
func NewProvider(gen Generator, ev *events.Logger, policy RetryPolicy, sleeper Sleeper, m *metrics.Metrics) *Provider {
	if sleeper == nil {
		sleeper = TimerSleeper
	}
	return &Provider{gen: gen, events: ev, policy: policy, sleeper: sleeper, metrics: m}
}

// Complete requests a summary of content. On success word_count and
// hash_preview have been recomputed locally. Failures are *CallError unless
// the context ended during a backoff wait.
func (p *Provider) Complete(ctx context.Context, content, jobID string) (Result, error) {
	prompt := BuildSummaryPrompt(content)
	maxAttempts := p.policy.attempts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		p.events.Log(ctx, jobID, events.StepAPICallStarted, events.StatusInfo)

		result, err := p.attempt(ctx, prompt)
		if err == nil {
			p.metrics.IncCallAttempt("success")
			p.events.Log(ctx, jobID, events.StepAPICallSuccess, events.StatusSuccess)
			return result, nil
		}

		ce := asCallError(err)
		p.metrics.IncCallAttempt(ce.Kind.Category())

		if !ce.Kind.Retryable() || attempt == maxAttempts-1 {
			ce.Attempts = attempt + 1
			p.logFailed(ctx, jobID, ce)
			return Result{}, ce
		}

		delay := p.policy.Delay(attempt)
		p.events.Log(ctx, jobID, events.StepRetryAttempt, events.StatusWarning,
			events.WithError(ce.Kind.Category(), fmt.Sprintf("%s, retrying in %s", ce.Error(), delay)),
			events.WithHTTPStatus(ce.StatusCode))

		if err := p.sleeper.Sleep(ctx, delay); err != nil {
			ce.Attempts = attempt + 1
			p.events.Log(ctx, jobID, events.StepAPICallFailed, events.StatusError,
				events.WithError(ce.Kind.Category(), "retry aborted: "+err.Error()),
				events.WithHTTPStatus(ce.StatusCode))
			return Result{}, fmt.Errorf("retry aborted: %w", err)
		}
	}
	// unreachable: the loop always returns on its final attempt
	return Result{}, &CallError{Kind: KindProtocol, Err: errors.New("no attempts made")}
}

func (p *Provider) attempt(ctx context.Context, prompt string) (Result, error) {
	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	result, err := ParseResult(text)
	if err != nil {
		return Result{}, err
	}
	result.Derive()
	return result, nil
}

func (p *Provider) logFailed(ctx context.Context, jobID string, ce *CallError) {
	p.events.Log(ctx, jobID, events.StepAPICallFailed, events.StatusError,
		events.WithError(ce.Kind.Category(), ce.Error()),
		events.WithHTTPStatus(ce.StatusCode))
}

// asCallError treats untyped generator failures as transport errors.
func asCallError(err error) *CallError {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce
	}
	return &CallError{Kind: KindTransport, Err: err}
}
