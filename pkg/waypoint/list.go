package waypoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseList reads waypoints written as "x,y[,KIND]" entries separated by
// semicolons, e.g. "0.5,0;0.5,0.8,VIEW". KIND defaults to MOVE.
func ParseList(list string) ([]Waypoint, error) {
	var out []Waypoint
	for i, entry := range strings.Split(list, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ",")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("waypoint %d: want x,y[,KIND], got %q", i+1, entry)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: x: %w", i+1, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: y: %w", i+1, err)
		}
		kind := Move
		if len(fields) == 3 {
			if kind, err = ParseKind(fields[2]); err != nil {
				return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
			}
		}
		w := New(x, y, kind)
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, errors.New("no waypoints given")
	}
	return out, nil
}
