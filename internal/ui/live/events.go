package live

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventSubmit signals jobs appended to the waiting queue.
	EventSubmit EventKind = iota
	// EventBatch signals a window tick that reserved a batch.
	EventBatch
	// EventJobDone signals a completed job.
	EventJobDone
	// EventRunEnd signals that the load run has finished.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind      EventKind
	Queued    int
	BatchSize int
	Active    int
	Depth     int
}
