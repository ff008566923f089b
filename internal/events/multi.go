package events

import (
	"context"
	"errors"
)

// MultiSink appends every event to each of its sinks.
type MultiSink []Sink

// Append attempts all sinks and joins their errors.
func (m MultiSink) Append(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps events in memory.
type Recorder struct {
	Events []Event
}

// Append stores e.
func (r *Recorder) Append(_ context.Context, e Event) error {
	r.Events = append(r.Events, e)
	return nil
}

// Steps returns the recorded step names in order.
func (r *Recorder) Steps() []Step {
	out := make([]Step, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Step)
	}
	return out
}

// Count returns how many recorded events have the given step.
func (r *Recorder) Count(step Step) int {
	n := 0
	for _, e := range r.Events {
		if e.Step == step {
			n++
		}
	}
	return n
}
