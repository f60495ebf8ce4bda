package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// ErrInputFull is returned by Enqueue when the input buffer is full.
var ErrInputFull = errors.New("waypoint input buffer full")

// ErrStopped is returned by Enqueue once the runner has exited.
var ErrStopped = errors.New("planner runner stopped")

// inputBuffer bounds waypoints waiting to be handed to the planner.
const inputBuffer = 64

// Runner drives a Planner at a fixed period. Ticks and waypoint
// insertions both happen on the Run goroutine, so the planner itself needs
// no locking.
type Runner struct {
	p      *Planner
	period time.Duration
	input  chan waypoint.Waypoint
	done   chan struct{}
	log    *slog.Logger

	status atomic.Pointer[Status]

	// OnTick, if set, is called on the Run goroutine after every tick.
	OnTick func(TickResult, Status)
}

// NewRunner wraps p. period is the tick cadence.
func NewRunner(p *Planner, period time.Duration) *Runner {
	r := &Runner{
		p:      p,
		period: period,
		input:  make(chan waypoint.Waypoint, inputBuffer),
		done:   make(chan struct{}),
		log:    p.log,
	}
	st := p.Status()
	r.status.Store(&st)
	return r
}

// Enqueue hands a waypoint to the planner without blocking.
func (r *Runner) Enqueue(w waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.input <- w:
		return nil
	default:
		return ErrInputFull
	}
}

// Status returns the snapshot published after the last tick or insertion.
func (r *Runner) Status() Status {
	return *r.status.Load()
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()
	defer close(r.done)

	r.log.Info("planner started", "period", r.period.String())

	for {
		select {
		case <-ctx.Done():
			r.log.Info("planner stopped", "ticks", r.p.ticks, "emitted", r.p.emitted)
			return ctx.Err()
		case w := <-r.input:
			if r.p.Push(w) == nil {
				r.publish()
			}
		case <-ticker.C:
			res := r.p.Tick()
			st := r.publish()
			if r.OnTick != nil {
				r.OnTick(res, st)
			}
		}
	}
}

func (r *Runner) publish() Status {
	st := r.p.Status()
	r.status.Store(&st)
	return st
}
