// Package events records the lifecycle of a summary job as an append-only
// stream of structured events.
package events

import (
	"context"
	"time"
)

// TimestampLayout is the UTC ISO-8601 form used for event and alert timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Step names one point in the workflow.
type Step string

const (
	StepWorkflowStarted           Step = "WORKFLOW_STARTED"
	StepLoadInput                 Step = "LOAD_INPUT"
	StepAPICallStarted            Step = "API_CALL_STARTED"
	StepAPICallSuccess            Step = "API_CALL_SUCCESS"
	StepAPICallFailed             Step = "API_CALL_FAILED"
	StepRetryAttempt              Step = "RETRY_ATTEMPT"
	StepResponseValidationSuccess Step = "RESPONSE_VALIDATION_SUCCESS"
	StepResponseValidationFailed  Step = "RESPONSE_VALIDATION_FAILED"
	StepRetryValidation           Step = "RETRY_VALIDATION"
	StepWorkflowCompleted         Step = "WORKFLOW_COMPLETED"
	StepWorkflowFailed            Step = "WORKFLOW_FAILED"
)

// Status is the severity of an event.
type Status string

const (
	StatusInfo    Status = "info"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Event is one line of the job journal. Optional fields are omitted when empty.
type Event struct {
	Timestamp    string `json:"timestamp"`
	WorkflowName string `json:"workflow_name"`
	JobID        string `json:"job_id"`
	Step         Step   `json:"step"`
	Status       Status `json:"status"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	HTTPStatus   int    `json:"http_status,omitempty"`
}

// Sink persists events. Implementations must only ever append.
type Sink interface {
	Append(ctx context.Context, e Event) error
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
