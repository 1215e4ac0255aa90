// Package progress generates an estimated progress narrative for a render
// whose engine exposes no incremental completion signal. The estimator and
// the real completion are two independent processes joined only at the final
// tick: the estimator advances on a timer and saturates at the cap, and only
// the true completion signal releases the terminal (100, "Done") tick.
package progress

import (
	"sync"
	"time"
)

const (
	// DefaultInterval is the tick cadence.
	DefaultInterval = 100 * time.Millisecond

	// DefaultStep is the percent advance per tick.
	DefaultStep = 3

	// cap until the render truly completes.
	maxEstimated = 90

	// each label covers this many percentage points.
	labelSpan = 16

	// DoneLabel is the stage label of the terminal tick.
	DoneLabel = "Done"
)

//nolint:gochecknoglobals // fixed phase narrative, effectively const
var stageLabels = []string{
	"Preparing",
	"Shaping low end",
	"Sculpting tone",
	"Taming dynamics",
	"Limiting peaks",
	"Polishing",
}

// Tick is one progress observation.
type Tick struct {
	Percent int
	Stage   string
}

// StageLabel returns the phase name for a percent value. Labels advance every
// 16 percentage points and clamp at the last label.
func StageLabel(percent int) string {
	idx := percent / labelSpan
	if idx >= len(stageLabels) {
		idx = len(stageLabels) - 1
	}

	return stageLabels[idx]
}

// Estimator emits a monotonically non-decreasing (percent, stage) sequence to
// an observer at a fixed cadence. Percent never exceeds 90 until Finish, which
// emits exactly one final (100, "Done") tick. The internal timer is torn down
// by Stop or Finish on every exit path.
type Estimator struct {
	interval time.Duration
	step     int
	emit     func(Tick)

	mu      sync.Mutex
	percent int
	halted  bool

	quit chan struct{}
	done sync.WaitGroup
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithInterval overrides the tick cadence.
func WithInterval(d time.Duration) Option {
	return func(e *Estimator) { e.interval = d }
}

// WithStep overrides the percent advance per tick.
func WithStep(step int) Option {
	return func(e *Estimator) { e.step = step }
}

// NewEstimator creates an estimator delivering ticks to emit.
func NewEstimator(emit func(Tick), opts ...Option) *Estimator {
	est := &Estimator{
		interval: DefaultInterval,
		step:     DefaultStep,
		emit:     emit,
		quit:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(est)
	}

	return est
}

// Start launches the background ticker. It must be paired with Stop or Finish.
func (e *Estimator) Start() {
	e.done.Add(1)

	go func() {
		defer e.done.Done()

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.quit:
				return
			case <-ticker.C:
				e.advance()
			}
		}
	}()
}

func (e *Estimator) advance() {
	e.mu.Lock()

	if e.halted {
		e.mu.Unlock()

		return
	}

	if e.percent < maxEstimated {
		e.percent += e.step
		if e.percent > maxEstimated {
			e.percent = maxEstimated
		}
	}

	tick := Tick{Percent: e.percent, Stage: StageLabel(e.percent)}
	e.mu.Unlock()

	e.emit(tick)
}

// Stop cancels the timer without a terminal tick. Used on failure paths.
// Safe to call more than once.
func (e *Estimator) Stop() {
	e.mu.Lock()

	if e.halted {
		e.mu.Unlock()

		return
	}

	e.halted = true
	close(e.quit)
	e.mu.Unlock()

	e.done.Wait()
}

// Finish cancels the timer and reconciles to completion with exactly one
// (100, "Done") tick, which is guaranteed to be the last tick emitted.
func (e *Estimator) Finish() {
	e.mu.Lock()

	if e.halted {
		e.mu.Unlock()

		return
	}

	e.halted = true
	close(e.quit)
	e.percent = 100
	e.mu.Unlock()

	e.done.Wait()
	e.emit(Tick{Percent: 100, Stage: DoneLabel})
}
