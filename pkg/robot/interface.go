// Package robot models the three-foot inchworm: the configuration of its
// feet and the small interfaces through which planned actions leave the
// process.
//
// Consumers should depend only on the interfaces they actually use.
package robot

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-spacejockey/pkg/protocol"
)

// ActionSink receives planner actions, one per productive tick, in
// emission order. Dispatch must not block the planner for long; there is
// no acknowledgement channel.
type ActionSink interface {
	Dispatch(a protocol.PlannerAction) error
}

// SinkFunc adapts a function to ActionSink.
type SinkFunc func(a protocol.PlannerAction) error

// Dispatch calls f(a).
func (f SinkFunc) Dispatch(a protocol.PlannerAction) error {
	return f(a)
}

// MultiSink fans an action out to every sink. A failing sink does not
// stop delivery to the rest; all failures are joined.
type MultiSink []ActionSink

// Dispatch delivers a to every non-nil sink in order.
func (m MultiSink) Dispatch(a protocol.PlannerAction) error {
	var errs []error
	for i, s := range m {
		if s == nil {
			continue
		}
		if err := s.Dispatch(a); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Discard is a sink that drops every action.
var Discard ActionSink = SinkFunc(func(protocol.PlannerAction) error { return nil })
