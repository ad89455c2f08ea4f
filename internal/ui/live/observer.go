package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Controller runs the live UI and implements rately.Observer. Observer
// callbacks may arrive from dispatcher goroutines concurrently with Close;
// the mutex keeps sends off the events channel once it is closed.
type Controller struct {
	mu      sync.Mutex
	closed  bool
	events  chan Event
	program *tea.Program
	done    chan struct{}
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// OnSubmit forwards queueing events to the UI.
func (c *Controller) OnSubmit(queued, depth int) {
	c.send(Event{Kind: EventSubmit, Queued: queued, Depth: depth})
}

// OnBatchStart forwards window reservation events to the UI.
func (c *Controller) OnBatchStart(size, active, depth int) {
	c.send(Event{Kind: EventBatch, BatchSize: size, Active: active, Depth: depth})
}

// OnJobDone forwards job completion events to the UI.
func (c *Controller) OnJobDone(active, depth int) {
	c.send(Event{Kind: EventJobDone, Active: active, Depth: depth})
}

// Finish marks the run complete and closes the UI.
func (c *Controller) Finish() {
	c.send(Event{Kind: EventRunEnd})
	c.Close()
}

// Close signals the UI to stop. It is idempotent.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// send enqueues an event without blocking the caller. Events arriving after
// Close, or while the buffer is full, are dropped.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
