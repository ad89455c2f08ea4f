package rately

// policy consumes a reserved batch. dispatch is always called with the
// dispatcher lock held and must not block on job execution.
type policy interface {
	dispatch(d *Dispatcher, jobs []Job)
}

// concurrentPolicy launches every job of a batch independently. Jobs that
// finish fast free their slot before slower siblings in the same batch.
type concurrentPolicy struct{}

func (concurrentPolicy) dispatch(d *Dispatcher, jobs []Job) {
	for _, job := range jobs {
		go func(job Job) {
			job.run()
			d.release()
		}(job)
	}
}

// serialPolicy chains every reserved job onto a single persistent
// continuation: job i+1's runner starts only after job i's runner and
// callback have fully completed, across window boundaries for the whole
// lifetime of the dispatcher. Each job still holds its reserved slot from
// reservation until its own link completes, so the active count matches the
// concurrent policy's accounting even though at most one job executes at a
// time.
type serialPolicy struct {
	// tail is the completion signal of the most recently chained job.
	// Mutated only under the dispatcher lock.
	tail <-chan struct{}
}

func (p *serialPolicy) dispatch(d *Dispatcher, jobs []Job) {
	for _, job := range jobs {
		prev := p.tail
		link := make(chan struct{})
		go func(job Job, prev <-chan struct{}, link chan<- struct{}) {
			if prev != nil {
				<-prev
			}
			job.run()
			d.release()
			close(link)
		}(job, prev, link)
		p.tail = link
	}
}
