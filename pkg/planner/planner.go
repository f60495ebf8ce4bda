// Package planner turns a queue of waypoints into one incremental action
// per tick for the three-foot inchworm.
//
// Planner is the single-owner state machine: it holds the waypoint queue,
// the committed ("current") and predicted ("next") configurations and the
// action id counter. Runner drives a Planner from a ticker and serializes
// operator input onto the same goroutine.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teslashibe/go-spacejockey/internal/config"
	"github.com/teslashibe/go-spacejockey/pkg/geom"
	"github.com/teslashibe/go-spacejockey/pkg/protocol"
	"github.com/teslashibe/go-spacejockey/pkg/robot"
	"github.com/teslashibe/go-spacejockey/pkg/waypoint"
)

// State is the loop state.
type State int

const (
	// Idle means the queue is empty.
	Idle State = iota
	// Moving means a waypoint is pending.
	Moving
)

func (s State) String() string {
	if s == Moving {
		return "MOVING"
	}
	return "IDLE"
}

// MarshalText writes the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a state name.
func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "IDLE":
		*s = Idle
	case "MOVING":
		*s = Moving
	default:
		return fmt.Errorf("unknown planner state %q", b)
	}
	return nil
}

// ArrivalObserver is told about every waypoint the planner pops.
type ArrivalObserver interface {
	WaypointReached(w waypoint.Waypoint, ticks uint64)
}

// TickResult reports what a single tick did.
type TickResult struct {
	State   State
	Action  *protocol.PlannerAction
	Reached *waypoint.Waypoint
	// Err is a non-fatal problem: a degenerate target or a sink failure.
	Err error
}

// Status is a read-only snapshot for operators.
type Status struct {
	State      State                   `json:"state"`
	Ticks      uint64                  `json:"ticks"`
	Emitted    uint64                  `json:"emitted"`
	Reached    uint64                  `json:"reached"`
	SinkErrors uint64                  `json:"sink_errors"`
	Current    robot.Configuration     `json:"current"`
	Next       robot.Configuration     `json:"next"`
	Pending    []waypoint.Waypoint     `json:"pending"`
	LastAction *protocol.PlannerAction `json:"last_action,omitempty"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the planner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// WithArrivalObserver registers an observer for popped waypoints.
func WithArrivalObserver(o ArrivalObserver) Option {
	return func(p *Planner) { p.observers = append(p.observers, o) }
}

// WithStart overrides the initial configuration.
func WithStart(c robot.Configuration) Option {
	return func(p *Planner) {
		p.current = c
		p.next = c
	}
}

// Planner is the planning loop. It is not safe for concurrent use.
type Planner struct {
	k     Constants
	queue *waypoint.Queue
	sink  robot.ActionSink
	log   *slog.Logger

	observers []ArrivalObserver

	// current is what arrival is tested against; next is the dead-reckoned
	// pose after every dispatched action.
	current robot.Configuration
	next    robot.Configuration

	nextID uint64
	state  State

	// served marks the head VIEW waypoint as framed by a camera action.
	served bool

	ticks      uint64
	emitted    uint64
	reached    uint64
	sinkErrors uint64
	lastAction *protocol.PlannerAction
}

// New creates a planner starting from cfg.Start with the end feet
// extend.min away from the middle.
func New(cfg config.Planner, sink robot.ActionSink, opts ...Option) *Planner {
	if sink == nil {
		sink = robot.Discard
	}
	start := robot.NewConfiguration(cfg.Start, cfg.Extend.Min)
	p := &Planner{
		k:       ConstantsFrom(cfg),
		queue:   waypoint.NewQueue(),
		sink:    sink,
		log:     slog.Default(),
		current: start,
		next:    start,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Constants returns the limits the planner was built with.
func (p *Planner) Constants() Constants {
	return p.k
}

// Push appends a waypoint to the queue. Waypoints that fail Validate are
// dropped so they can never become the head.
func (p *Planner) Push(w waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		p.log.Warn("waypoint dropped", "id", w.ID, "error", err)
		return err
	}
	p.queue.Push(w)
	if p.state == Idle {
		p.state = Moving
	}
	p.log.Info("waypoint queued", "id", w.ID, "kind", w.Kind.String(), "x", w.X, "y", w.Y, "pending", p.queue.Len())
	return nil
}

// State returns the loop state.
func (p *Planner) State() State {
	return p.state
}

// Current returns the committed configuration.
func (p *Planner) Current() robot.Configuration {
	return p.current.Clone()
}

// Next returns the predicted configuration.
func (p *Planner) Next() robot.Configuration {
	return p.next.Clone()
}

// Pending returns the queued waypoints, head first.
func (p *Planner) Pending() []waypoint.Waypoint {
	return p.queue.Snapshot()
}

// Status returns a snapshot of the planner.
func (p *Planner) Status() Status {
	s := Status{
		State:      p.state,
		Ticks:      p.ticks,
		Emitted:    p.emitted,
		Reached:    p.reached,
		SinkErrors: p.sinkErrors,
		Current:    p.current.Clone(),
		Next:       p.next.Clone(),
		Pending:    p.queue.Snapshot(),
		UpdatedAt:  time.Now(),
	}
	if p.lastAction != nil {
		a := *p.lastAction
		s.LastAction = &a
	}
	return s
}

// Arrived reports whether conf satisfies w.
//
// MOVE waypoints need the middle foot within ferr. VIEW waypoints need the
// middle foot inside [view.min, view.max). A target under the middle foot
// counts as reached for either kind.
func (p *Planner) Arrived(conf robot.Configuration, w waypoint.Waypoint) bool {
	dist := geom.Distance(conf.Middle.Point, w.Point)
	if dist < p.k.Ferr {
		return true
	}
	if w.Kind == waypoint.View {
		return dist >= p.k.ViewMin && dist < p.k.ViewMax
	}
	return false
}

// Tick runs one planning cycle.
func (p *Planner) Tick() TickResult {
	p.ticks++

	head, ok := p.queue.Peek()
	if !ok {
		p.state = Idle
		return TickResult{State: Idle}
	}
	p.state = Moving

	if p.served || p.Arrived(p.current, head) {
		return p.pop(head)
	}

	p.current = p.next.Clone()
	action, d, err := p.planNextMove(p.current, head)
	if err != nil {
		// Degenerate tick: emit nothing and let the next arrival test
		// see the updated configuration.
		p.log.Debug("no move this tick", "waypoint", head.ID, "error", err)
		return TickResult{State: Moving, Err: err}
	}

	res := TickResult{State: Moving, Action: &action}
	if err := p.sink.Dispatch(action); err != nil {
		p.sinkErrors++
		p.log.Warn("action dispatch failed", "major_id", action.MajorID, "error", err)
		res.Err = err
	}
	p.emitted++
	p.lastAction = &action

	if fellBack := p.next.Apply(action); fellBack && d.Branch != BranchView {
		p.log.Warn("unknown segment, applied to front foot", "node", action.NodeName)
	}
	if d.Branch == BranchView && head.Kind == waypoint.View {
		p.served = true
	}

	p.log.Debug("action", "major_id", action.MajorID, "branch", d.Branch.String(),
		"node", action.NodeName, "x", action.X, "y", action.Y, "theta", action.Theta)
	return res
}

// planNextMove decides the next move and stamps it with a fresh id.
func (p *Planner) planNextMove(conf robot.Configuration, w waypoint.Waypoint) (protocol.PlannerAction, Decision, error) {
	d, err := Decide(p.k, conf, w)
	if err != nil {
		return protocol.PlannerAction{}, d, err
	}
	id := p.nextID
	p.nextID++
	return d.Action(id), d, nil
}

func (p *Planner) pop(head waypoint.Waypoint) TickResult {
	p.queue.Pop()
	p.served = false
	p.reached++
	p.log.Info("waypoint reached", "id", head.ID, "kind", head.Kind.String(), "pending", p.queue.Len())
	for _, o := range p.observers {
		o.WaypointReached(head, p.ticks)
	}
	return TickResult{State: Moving, Reached: &head}
}

// IsCoincident reports whether err is the degenerate-target error.
func IsCoincident(err error) bool {
	return errors.Is(err, ErrCoincident)
}
