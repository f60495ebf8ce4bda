// Package waypoint defines operator targets and the FIFO queue the planner
// consumes them from.
package waypoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-spacejockey/pkg/geom"
)

// Kind selects how a waypoint is satisfied.
type Kind int

const (
	// Move waypoints are reached by standing on them.
	Move Kind = iota + 1
	// View waypoints are reached by holding within the viewing band.
	View
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "MOVE"
	case View:
		return "VIEW"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name into a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MOVE", "":
		return Move, nil
	case "VIEW":
		return View, nil
	default:
		return Move, fmt.Errorf("unknown waypoint kind %q", value)
	}
}

// MarshalJSON writes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts kind names.
func (k *Kind) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ErrNotFinite is returned for waypoints with NaN or infinite coordinates.
var ErrNotFinite = errors.New("waypoint coordinates must be finite")

// Waypoint is a queued target position.
type Waypoint struct {
	geom.Point
	Kind   Kind      `json:"action"`
	ID     string    `json:"id"`
	Queued time.Time `json:"queued"`
}

// New creates a waypoint with a fresh ID.
func New(x, y float64, kind Kind) Waypoint {
	return Waypoint{
		Point:  geom.Point{X: x, Y: y},
		Kind:   kind,
		ID:     uuid.NewString(),
		Queued: time.Now(),
	}
}

// Validate rejects waypoints the planner cannot steer toward.
func (w Waypoint) Validate() error {
	if !w.Finite() {
		return fmt.Errorf("%w: got %s", ErrNotFinite, w.Point)
	}
	switch w.Kind {
	case Move, View:
		return nil
	default:
		return fmt.Errorf("unknown waypoint kind %s", w.Kind)
	}
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s %s", w.Kind, w.Point)
}
