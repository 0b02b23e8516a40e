package engine

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTickPeriod is the cadence of the logic tick loop.
const DefaultTickPeriod = 10 * time.Millisecond

// ControllerState is the tick loop lifecycle state.
type ControllerState string

const (
	StateStopped ControllerState = "stopped"
	StateRunning ControllerState = "running"
)

// TickController drives full graph passes on a fixed cadence, gated by the
// global enable flag.
//
// State machine: Stopped -> Running -> Stopped. Start while Running and
// Stop while Stopped are no-ops. The loop goroutine always finishes an
// in-flight tick before honoring a stop; stopping merely ceases to
// schedule new ticks. When the enable flag goes false mid-run the
// controller transitions itself to Stopped at the next tick boundary.
type TickController struct {
	exec   *Executor
	ctx    ContextSource
	period time.Duration

	mu    sync.Mutex
	state ControllerState
	stop  chan struct{}
	done  chan struct{}
}

// ControllerOption configures a TickController.
type ControllerOption func(*TickController)

// WithPeriod overrides the tick cadence. Tests use short periods; the
// production default is DefaultTickPeriod.
func WithPeriod(d time.Duration) ControllerOption {
	return func(c *TickController) {
		c.period = d
	}
}

// NewTickController creates a controller in the Stopped state.
func NewTickController(exec *Executor, ctx ContextSource, opts ...ControllerOption) *TickController {
	c := &TickController{
		exec:   exec,
		ctx:    ctx,
		period: DefaultTickPeriod,
		state:  StateStopped,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *TickController) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start transitions to Running and begins scheduling ticks. Returns true
// when a new loop was started; false when already Running or when the
// global enable flag is down (the controller only runs while enabled).
func (c *TickController) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return false
	}
	if !c.ctx.Enabled() {
		slog.Debug("tick controller start refused: system disabled")
		return false
	}

	c.state = StateRunning
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.loop(c.stop, c.done)

	slog.Info("tick controller started", "period", c.period)
	return true
}

// Stop transitions to Stopped. Blocks until the in-flight tick (if any)
// has finished; no new tick is scheduled afterwards. Idempotent.
func (c *TickController) Stop() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	stop, done := c.stop, c.done
	c.mu.Unlock()

	close(stop)
	<-done

	c.mu.Lock()
	c.state = StateStopped
	c.mu.Unlock()

	slog.Info("tick controller stopped")
}

// loop is the single tick goroutine. It owns tick scheduling; every graph
// pass runs to completion before the next is considered.
func (c *TickController) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.ctx.Enabled() {
				// Flag went down: transition ourselves to Stopped and
				// stop scheduling. State is flipped here rather than in
				// Stop() since nobody called Stop.
				slog.Info("tick controller stopping: system disabled")
				c.mu.Lock()
				c.state = StateStopped
				c.mu.Unlock()
				return
			}
			c.exec.RunTick()
		}
	}
}
