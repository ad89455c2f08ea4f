package live

import "time"

// WindowRow holds UI state for one opened window.
type WindowRow struct {
	Index     int
	BatchSize int
	Active    int
	Depth     int
	OpenedAt  time.Time
}

// State captures the live UI state for a load run.
type State struct {
	StartedAt time.Time
	Submitted int
	Completed int
	Active    int
	Depth     int
	Windows   []WindowRow
	Finished  bool
}

// maxWindowRows bounds the window history kept for display.
const maxWindowRows = 256

// Reduce folds one event into the UI state.
func Reduce(state State, event Event, now time.Time) State {
	switch event.Kind {
	case EventSubmit:
		state.Submitted += event.Queued
		state.Depth = event.Depth
	case EventBatch:
		state.Active = event.Active
		state.Depth = event.Depth
		state.Windows = append(state.Windows, WindowRow{
			Index:     len(state.Windows) + 1,
			BatchSize: event.BatchSize,
			Active:    event.Active,
			Depth:     event.Depth,
			OpenedAt:  now,
		})
		if len(state.Windows) > maxWindowRows {
			state.Windows = state.Windows[len(state.Windows)-maxWindowRows:]
		}
	case EventJobDone:
		state.Completed++
		state.Active = event.Active
		state.Depth = event.Depth
	case EventRunEnd:
		state.Finished = true
	}
	return state
}
