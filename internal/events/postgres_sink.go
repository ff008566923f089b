package events

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSink appends events to the workflow_events table.
type PostgresSink struct {
	DB *sql.DB
}

// NewPostgresSink wraps an open database handle.
func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{DB: db}
}

// Append inserts one row per event. Rows are never updated.
func (s *PostgresSink) Append(ctx context.Context, e Event) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("postgres event sink not configured")
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO workflow_events
			(event_time, workflow_name, job_id, step, status, error_type, error_message, http_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		e.Timestamp,
		e.WorkflowName,
		e.JobID,
		string(e.Step),
		string(e.Status),
		nullString(e.ErrorType),
		nullString(e.ErrorMessage),
		nullInt(e.HTTPStatus),
	)
	if err != nil {
		return fmt.Errorf("insert workflow event: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
