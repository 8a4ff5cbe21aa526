package main

import (
	"encoding/json"
	"fmt"
	"io"

	"bepinstall/internal/domain"
)

// eventJSON is the --json rendering of a run event
type eventJSON struct {
	RunID   string `json:"run_id"`
	Kind    string `json:"kind"`
	State   string `json:"state"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// followRun prints events until the channel closes and returns the terminal event.
// A failed run returns its error; a partial run returns ErrPartial. A write
// error stops the output but the channel is still drained, so the run is
// never left blocked on a send.
func followRun(out io.Writer, events <-chan domain.Event) (domain.Event, error) {
	var last domain.Event
	var writeErr error
	enc := json.NewEncoder(out)

	for ev := range events {
		last = ev
		if writeErr != nil {
			continue
		}
		if jsonOutput {
			if err := enc.Encode(toEventJSON(ev)); err != nil {
				writeErr = fmt.Errorf("writing event: %w", err)
			}
			continue
		}
		printEvent(out, ev)
	}
	if writeErr != nil {
		return last, writeErr
	}

	switch last.State {
	case domain.StateFailed:
		if last.Err != nil {
			return last, last.Err
		}
		return last, fmt.Errorf("%s failed: %s", last.Kind, last.Message)
	case domain.StatePartial:
		return last, ErrPartial
	}
	return last, nil
}

func printEvent(out io.Writer, ev domain.Event) {
	switch ev.State {
	case domain.StateSucceeded:
		fmt.Fprintf(out, "%s %s\n", colorGreen("✓"), ev.Message)
	case domain.StatePartial:
		fmt.Fprintf(out, "%s %s\n", colorYellow("!"), ev.Message)
	case domain.StateFailed:
		// The error itself is printed by Execute
	default:
		if ev.Message == "" {
			return
		}
		if ev.Total > 0 {
			fmt.Fprintf(out, "[%d/%d] %s\n", ev.Step, ev.Total, ev.Message)
		} else if verbose {
			fmt.Fprintf(out, "      %s\n", ev.Message)
		}
	}
}

func toEventJSON(ev domain.Event) eventJSON {
	out := eventJSON{
		RunID:   ev.RunID,
		Kind:    string(ev.Kind),
		State:   ev.State.String(),
		Step:    ev.Step,
		Total:   ev.Total,
		Message: ev.Message,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}
