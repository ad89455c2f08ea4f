package rately

// Observer receives dispatcher lifecycle events. Implementations must not
// call back into the Dispatcher from an event handler.
type Observer interface {
	// OnSubmit signals that queued jobs were appended to the waiting queue.
	OnSubmit(queued, depth int)
	// OnBatchStart signals that a window tick reserved a batch for execution.
	OnBatchStart(size, active, depth int)
	// OnJobDone signals that one reserved job finished and freed its slot.
	OnJobDone(active, depth int)
}
