package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// NewActionMessage wraps a planner action for broadcast
func NewActionMessage(a PlannerAction) (*Message, error) {
	return NewMessage(TypeAction, a)
}

// NewReachedMessage wraps a waypoint arrival for broadcast
func NewReachedMessage(r ReachedData) (*Message, error) {
	return NewMessage(TypeReached, r)
}

// csvFields is the column count of an encoded action line.
const csvFields = 6

// EncodeActionCSV renders a as "major_id,node_name,action_type,theta,x,y".
// Serial firmware reads one such line per action.
func EncodeActionCSV(a PlannerAction) string {
	return fmt.Sprintf("%d,%s,%s,%.4f,%.4f,%.4f", a.MajorID, a.NodeName, a.ActionType, a.Theta, a.X, a.Y)
}

// ParseActionCSV parses a line produced by EncodeActionCSV.
func ParseActionCSV(line string) (PlannerAction, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != csvFields {
		return PlannerAction{}, fmt.Errorf("expected %d fields, got %d", csvFields, len(parts))
	}

	id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return PlannerAction{}, fmt.Errorf("major_id: %w", err)
	}

	actionType := ActionType(strings.ToUpper(strings.TrimSpace(parts[2])))
	if actionType != ActionStep && actionType != ActionView {
		return PlannerAction{}, fmt.Errorf("unknown action type %q", parts[2])
	}

	var nums [3]float64
	for i, field := range parts[3:] {
		nums[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return PlannerAction{}, fmt.Errorf("field %d: %w", i+3, err)
		}
	}

	return PlannerAction{
		MajorID:    id,
		NodeName:   strings.TrimSpace(parts[1]),
		ActionType: actionType,
		Theta:      nums[0],
		X:          nums[1],
		Y:          nums[2],
	}, nil
}
