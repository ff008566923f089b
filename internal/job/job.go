// Package job runs one summarization job from input file to persisted result.
package job

import "github.com/google/uuid"

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job is a single run of the workflow.
type Job struct {
	ID      string
	Content string
	Status  Status
}

// NewID returns a fresh random job identifier.
func NewID() string {
	return uuid.NewString()
}

// ErrorKind names failures raised by the orchestrator itself.
type ErrorKind string

const (
	KindInput   ErrorKind = "InputError"
	KindStorage ErrorKind = "StorageError"
)

// Error wraps an input or persistence failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
