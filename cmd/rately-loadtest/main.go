// Command rately-loadtest runs a synthetic load run against a dispatcher.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/almgong/rately/internal/ui/live"
	"github.com/almgong/rately/pkg/rately"
)

// config captures command-line configuration for the load run.
type config struct {
	Jobs        int
	Policy      string
	Capacity    int
	Window      time.Duration
	GraceBuffer time.Duration
	Hold        time.Duration
	UIMode      string
	NoColor     bool
}

func main() {
	cfg := parseConfig()
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseConfig reads flags and builds a config.
func parseConfig() config {
	var cfg config
	flag.IntVar(&cfg.Jobs, "jobs", 50, "number of jobs to submit")
	flag.StringVar(&cfg.Policy, "policy", "concurrent", "dispatch policy: concurrent or serial")
	flag.IntVar(&cfg.Capacity, "capacity", 10, "jobs allowed per window")
	flag.DurationVar(&cfg.Window, "window", time.Second, "window length")
	flag.DurationVar(&cfg.GraceBuffer, "grace", 200*time.Millisecond, "grace buffer added to the window")
	flag.DurationVar(&cfg.Hold, "hold", 100*time.Millisecond, "how long each job holds its slot")
	flag.StringVar(&cfg.UIMode, "ui", "auto", "ui mode: auto, live or plain")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "disable color output")
	flag.Parse()
	return cfg
}

// validate ensures the configuration is usable.
func (c config) validate() error {
	if c.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive")
	}
	if c.Policy != "concurrent" && c.Policy != "serial" {
		return fmt.Errorf("unsupported policy: %s", c.Policy)
	}
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive for a load run")
	}
	if c.Hold < 0 {
		return fmt.Errorf("hold must be non-negative")
	}
	return nil
}

// run drives the load run to completion and prints a summary.
func run(cfg config) error {
	decision, err := resolveUIMode(cfg.UIMode, os.Stdout)
	if err != nil {
		return err
	}
	if decision.warning != "" {
		fmt.Fprintln(os.Stderr, decision.warning)
	}

	counters := &runCounters{}
	var controller *live.Controller
	observer := rately.Observer(counters)
	if decision.useLive {
		controller = live.Start(os.Stdout, live.Options{NoColor: cfg.NoColor})
		observer = fanoutObserver{counters, controller}
	}

	dispatcher, err := newDispatcher(cfg, observer)
	if err != nil {
		return err
	}
	defer dispatcher.Stop()

	var wg sync.WaitGroup
	wg.Add(cfg.Jobs)
	jobs := make([]rately.Job, 0, cfg.Jobs)
	for i := 0; i < cfg.Jobs; i++ {
		jobs = append(jobs, holdJob(cfg.Hold, &wg))
	}

	start := time.Now()
	dispatcher.Submit(jobs...)
	wg.Wait()
	elapsed := time.Since(start)

	if controller != nil {
		controller.Finish()
		controller.Wait()
	}
	printSummary(cfg, counters, elapsed)
	return nil
}

// newDispatcher builds the dispatcher for the selected policy.
func newDispatcher(cfg config, observer rately.Observer) (*rately.Dispatcher, error) {
	rcfg := rately.Config{
		Capacity:    cfg.Capacity,
		Window:      cfg.Window,
		GraceBuffer: cfg.GraceBuffer,
	}
	if cfg.Policy == "serial" {
		return rately.NewSerialWithObserver(rcfg, observer)
	}
	return rately.NewConcurrentWithObserver(rcfg, observer)
}

// holdJob builds a job that resolves after the hold duration.
func holdJob(hold time.Duration, wg *sync.WaitGroup) rately.Job {
	return rately.Job{
		Run: func() rately.Result {
			if hold <= 0 {
				return rately.Value(nil)
			}
			ch := make(chan any, 1)
			time.AfterFunc(hold, func() { ch <- nil })
			return rately.Pending(ch)
		},
		Done: func(any) { wg.Done() },
	}
}

// printSummary writes the final counters to stdout.
func printSummary(cfg config, counters *runCounters, elapsed time.Duration) {
	windows, completed := counters.snapshot()
	fmt.Printf("policy=%s jobs=%d capacity=%d window=%s grace=%s\n",
		cfg.Policy, cfg.Jobs, cfg.Capacity, cfg.Window, cfg.GraceBuffer)
	fmt.Printf("completed=%d windows=%d elapsed=%s throughput=%.1f jobs/s\n",
		completed, windows, elapsed.Round(time.Millisecond),
		float64(completed)/elapsed.Seconds())
}

// runCounters tracks window and completion totals for the summary.
type runCounters struct {
	mu        sync.Mutex
	windows   int
	completed int
}

// OnSubmit is a no-op; submissions are known up front.
func (c *runCounters) OnSubmit(int, int) {}

// OnBatchStart counts opened windows.
func (c *runCounters) OnBatchStart(int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windows++
}

// OnJobDone counts completions.
func (c *runCounters) OnJobDone(int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed++
}

// snapshot returns the totals.
func (c *runCounters) snapshot() (windows, completed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.windows, c.completed
}

// fanoutObserver forwards events to every member.
type fanoutObserver []rately.Observer

func (f fanoutObserver) OnSubmit(queued, depth int) {
	for _, o := range f {
		o.OnSubmit(queued, depth)
	}
}

func (f fanoutObserver) OnBatchStart(size, active, depth int) {
	for _, o := range f {
		o.OnBatchStart(size, active, depth)
	}
}

func (f fanoutObserver) OnJobDone(active, depth int) {
	for _, o := range f {
		o.OnJobDone(active, depth)
	}
}
