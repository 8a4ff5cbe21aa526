package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"bepinstall/internal/domain"

	"github.com/google/uuid"
)

// eventBuffer is how many progress events may queue before a run blocks
const eventBuffer = 64

// Reporter is handed to a run so it can publish progress
type Reporter struct {
	runID  string
	kind   domain.RunKind
	events chan<- domain.Event
	ctx    context.Context

	mu       sync.Mutex
	step     int
	total    int
	message  string
	warnings []string
}

// RunID returns the ID of the run being reported
func (r *Reporter) RunID() string {
	return r.runID
}

// SetTotal sets how many steps the run expects
func (r *Reporter) SetTotal(total int) {
	r.mu.Lock()
	r.total = total
	r.mu.Unlock()
}

// Status publishes a new status line without advancing
func (r *Reporter) Status(format string, args ...interface{}) {
	r.mu.Lock()
	r.message = fmt.Sprintf(format, args...)
	ev := r.event(domain.StateRunning, nil)
	r.mu.Unlock()
	r.send(ev)
}

// Step advances the progress by one and publishes the status line
func (r *Reporter) Step(format string, args ...interface{}) {
	r.mu.Lock()
	r.step++
	r.message = fmt.Sprintf(format, args...)
	ev := r.event(domain.StateRunning, nil)
	r.mu.Unlock()
	r.send(ev)
}

// Warn records a non-fatal failure. A run with warnings ends as partial.
func (r *Reporter) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.message = msg
	ev := r.event(domain.StateRunning, nil)
	r.mu.Unlock()
	r.send(ev)
}

// Warnings returns the warnings recorded so far
func (r *Reporter) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

func (r *Reporter) event(state domain.RunState, err error) domain.Event {
	return domain.Event{
		RunID:   r.runID,
		Kind:    r.kind,
		State:   state,
		Step:    r.step,
		Total:   r.total,
		Message: r.message,
		Err:     err,
		Time:    time.Now(),
	}
}

// send delivers a progress event, dropping it if the run was cancelled
// while the consumer is not reading
func (r *Reporter) send(ev domain.Event) {
	select {
	case r.events <- ev:
	case <-r.ctx.Done():
	}
}

// RunFunc is the body of a run
type RunFunc func(ctx context.Context, rep *Reporter) error

// Runner executes one run at a time in the background and streams its events
type Runner struct {
	mu     sync.Mutex
	active bool
	logger *slog.Logger
}

// NewRunner creates a runner
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Running reports whether a run is active
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Start launches fn in a goroutine. The returned channel yields progress
// events, then exactly one terminal event (succeeded, partial or failed), then
// closes. A panic in fn ends the run as failed. Only one run may be active;
// Start returns domain.ErrRunInProgress otherwise. The caller must drain the
// channel.
func (r *Runner) Start(ctx context.Context, kind domain.RunKind, fn RunFunc) (<-chan domain.Event, error) {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	r.active = true
	r.mu.Unlock()

	events := make(chan domain.Event, eventBuffer)
	rep := &Reporter{
		runID:  uuid.NewString(),
		kind:   kind,
		events: events,
		ctx:    ctx,
	}

	go func() {
		var err error
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic in run", "run", rep.runID, "recover", p, "stack", string(debug.Stack()))
				err = fmt.Errorf("run panicked: %v", p)
			}
			terminal := r.finish(rep, err)

			// Release before the terminal event so a consumer can start the next run on receipt
			r.mu.Lock()
			r.active = false
			r.mu.Unlock()

			events <- terminal
			close(events)
		}()

		rep.Status("starting %s", kind)
		err = fn(ctx, rep)
	}()

	return events, nil
}

func (r *Runner) finish(rep *Reporter, err error) domain.Event {
	rep.mu.Lock()
	defer rep.mu.Unlock()

	switch {
	case err != nil:
		rep.message = err.Error()
		return rep.event(domain.StateFailed, err)
	case len(rep.warnings) > 0:
		rep.message = fmt.Sprintf("finished with %d warning(s)", len(rep.warnings))
		return rep.event(domain.StatePartial, nil)
	default:
		if rep.total > 0 {
			rep.step = rep.total
		}
		rep.message = fmt.Sprintf("%s finished", rep.kind)
		return rep.event(domain.StateSucceeded, nil)
	}
}

// Wait drains events and returns the terminal one
func Wait(events <-chan domain.Event) domain.Event {
	var last domain.Event
	for ev := range events {
		last = ev
	}
	return last
}
