package domain

import "time"

// RunKind identifies what a run does
type RunKind string

const (
	RunInstall   RunKind = "install"
	RunUninstall RunKind = "uninstall"
)

// RunState is the lifecycle state of a run
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateSucceeded
	StatePartial // Finished, but some mods failed
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StatePartial:
		return "partial"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends a run
func (s RunState) Terminal() bool {
	return s == StateSucceeded || s == StatePartial || s == StateFailed
}

// Event is a progress report from a run. The last event of every run is terminal.
type Event struct {
	RunID   string
	Kind    RunKind
	State   RunState
	Step    int    // Completed steps
	Total   int    // Expected steps (0 if unknown)
	Message string // Rolling status line
	Err     error  // Set on StateFailed
	Time    time.Time
}

// Fraction returns the completed share of the run in [0, 1]
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	f := float64(e.Step) / float64(e.Total)
	if f > 1 {
		return 1
	}
	return f
}

// RunRecord is a stored summary of a finished run
type RunRecord struct {
	ID          string
	Kind        RunKind
	State       RunState
	InstallRoot string
	Message     string
	StartedAt   time.Time
	FinishedAt  time.Time
}
