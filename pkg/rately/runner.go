package rately

// Job is a unit of work managed by a Dispatcher. Jobs are immutable once
// submitted and carry no identity beyond their queue position.
type Job struct {
	// Run produces the job's result. It is invoked exactly once.
	Run func() Result
	// Done, when non-nil, receives the resolved value after Run completes.
	Done func(v any)
}

// Result is the outcome of a job's work: either an immediate value or a
// pending computation delivered on a channel.
type Result struct {
	value   any
	pending <-chan any
}

// Value wraps an immediately available result.
func Value(v any) Result {
	return Result{value: v}
}

// Pending wraps a result that resolves when ch yields a value.
func Pending(ch <-chan any) Result {
	return Result{pending: ch}
}

// wait blocks until the result resolves.
func (r Result) wait() any {
	if r.pending != nil {
		return <-r.pending
	}
	return r.value
}

// run executes the job to completion: it invokes Run, waits for a pending
// result to resolve, then invokes Done with the resolved value. Panics in
// Run or Done are not recovered; the dispatcher guarantees when work runs,
// not whether it succeeds.
func (j Job) run() {
	var v any
	if j.Run != nil {
		v = j.Run().wait()
	}
	if j.Done != nil {
		j.Done(v)
	}
}
