package job

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"doc-summary/internal/alert"
	"doc-summary/internal/events"
	"doc-summary/internal/extract"
	"doc-summary/internal/llm"
	"doc-summary/internal/shared/metrics"
	"doc-summary/internal/shared/storage/object"
	"doc-summary/internal/shared/telemetry"
	"doc-summary/internal/validation"
)

const validationFailureDetail = "Response schema validation failed"

// Completer produces a summary result for document content.
type Completer interface {
	Complete(ctx context.Context, content, jobID string) (llm.Result, error)
}

// Checker decides whether a result may be persisted.
type Checker interface {
	Validate(ctx context.Context, r llm.Result, jobID string) validation.Outcome
}

// Loader reads the input document. The default is extract.LoadFile.
type Loader func(ctx context.Context, path string) (string, error)

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Events    *events.Logger
	Provider  Completer
	Validator Checker
	Store     object.Store
	Alerts    alert.Sink
	Metrics   *metrics.Metrics
	Load      Loader
	// Stdout receives the operator summary on success. Defaults to os.Stdout.
	Stdout io.Writer
	NewID  func() string
	Now    func() time.Time
}

// Orchestrator drives a job through load, completion, validation and persistence.
type Orchestrator struct {
	deps                  Deps
	maxValidationAttempts int
	outputKey             string
}

// NewOrchestrator returns an Orchestrator that allows maxValidationAttempts
// completion results per job and writes the accepted one under outputKey.
func NewOrchestrator(deps Deps, maxValidationAttempts int, outputKey string) *Orchestrator {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Load == nil {
		deps.Load = extract.LoadFile
	}
	if deps.NewID == nil {
		deps.NewID = NewID
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if maxValidationAttempts < 1 {
		maxValidationAttempts = 1
	}
	return &Orchestrator{deps: deps, maxValidationAttempts: maxValidationAttempts, outputKey: outputKey}
}

// Run executes one job and returns the process exit code: 0 on success, 1 on failure.
func (o *Orchestrator) Run(ctx context.Context, inputPath string) int {
	j := &Job{ID: o.deps.NewID(), Status: StatusRunning}
	started := o.deps.Now()
	o.deps.Events.Log(ctx, j.ID, events.StepWorkflowStarted, events.StatusInfo)

	code := o.run(ctx, j, inputPath)

	o.deps.Metrics.ObserveJobDuration(o.deps.Now().Sub(started))
	o.deps.Metrics.IncJobRun(string(j.Status))
	telemetry.Info("job finished", map[string]any{
		"job_id": j.ID,
		"status": string(j.Status),
	})
	return code
}

func (o *Orchestrator) run(ctx context.Context, j *Job, inputPath string) int {
	o.deps.Events.Log(ctx, j.ID, events.StepLoadInput, events.StatusInfo)
	content, err := o.deps.Load(ctx, inputPath)
	if err != nil {
		return o.failException(ctx, j, &Error{Kind: KindInput, Err: err})
	}
	j.Content = content

	for attempt := 1; ; attempt++ {
		result, err := o.deps.Provider.Complete(ctx, j.Content, j.ID)
		if err != nil {
			return o.failException(ctx, j, err)
		}

		if o.deps.Validator.Validate(ctx, result, j.ID).Valid {
			return o.succeed(ctx, j, result)
		}
		if attempt >= o.maxValidationAttempts {
			return o.failValidation(ctx, j, attempt)
		}
		o.deps.Events.Log(ctx, j.ID, events.StepRetryValidation, events.StatusWarning)
	}
}

func (o *Orchestrator) succeed(ctx context.Context, j *Job, result llm.Result) int {
	body, err := encodeResult(result)
	if err != nil {
		return o.failException(ctx, j, &Error{Kind: KindStorage, Err: err})
	}
	if _, err := o.deps.Store.SaveWithKey(ctx, o.outputKey, "application/json", bytes.NewReader(body)); err != nil {
		return o.failException(ctx, j, &Error{Kind: KindStorage, Err: fmt.Errorf("save output: %w", err)})
	}

	j.Status = StatusSucceeded
	o.deps.Events.Log(ctx, j.ID, events.StepWorkflowCompleted, events.StatusSuccess)

	w := o.deps.Stdout
	fmt.Fprintf(w, "\nWorkflow completed successfully (job_id: %s)\n", j.ID)
	fmt.Fprintf(w, "Summary: %s\n", result.SummaryText())
	fmt.Fprintf(w, "Bullet points: %s\n", formatBullets(result))
	fmt.Fprintf(w, "Output saved to: %s\n", o.deps.Store.Location(o.outputKey))
	return 0
}

func (o *Orchestrator) failValidation(ctx context.Context, j *Job, attempts int) int {
	reason := fmt.Sprintf("Validation failed after %d attempts", attempts)
	o.deps.Events.Log(ctx, j.ID, events.StepWorkflowFailed, events.StatusError,
		events.WithError("validation_failure", reason))
	return o.fail(ctx, j, reason, validationFailureDetail)
}

func (o *Orchestrator) failException(ctx context.Context, j *Job, err error) int {
	o.deps.Events.Log(ctx, j.ID, events.StepWorkflowFailed, events.StatusError,
		events.WithError("exception", err.Error()))
	return o.fail(ctx, j, "Exception: "+errorKind(err), err.Error())
}

func (o *Orchestrator) fail(ctx context.Context, j *Job, reason, details string) int {
	j.Status = StatusFailed
	if o.deps.Alerts == nil {
		return 1
	}
	payload := alert.NewPayload(o.deps.Now(), j.ID, reason, details)
	// The alert must go out even when the job was cancelled.
	if err := o.deps.Alerts.Send(context.WithoutCancel(ctx), payload); err != nil {
		telemetry.Error("alert delivery failed", map[string]any{
			"job_id": j.ID,
			"error":  err.Error(),
		})
	}
	return 1
}

// errorKind names the failure for the alert reason.
func errorKind(err error) string {
	var ce *llm.CallError
	if errors.As(err, &ce) {
		return string(ce.Kind)
	}
	var je *Error
	if errors.As(err, &je) {
		return string(je.Kind)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "Canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	default:
		return "Error"
	}
}

func encodeResult(r llm.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return buf.Bytes(), nil
}

// formatBullets quotes string bullets and prints any other element as JSON.
func formatBullets(r llm.Result) string {
	items, _ := r.Bullets()
	out := make([]string, len(items))
	for i, item := range items {
		if s, ok := llm.JSONString(item); ok {
			out[i] = fmt.Sprintf("%q", s)
			continue
		}
		out[i] = string(item)
	}
	return "[" + strings.Join(out, ", ") + "]"
}
