// Package protocol defines the messages the planner exchanges with the
// outside world: planner actions, operator waypoint requests and the
// websocket envelope that carries them.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of websocket message
type MessageType string

const (
	// Planner → operator
	TypeAction  MessageType = "action"  // Dispatched planner action
	TypeStatus  MessageType = "status"  // Planner status snapshot
	TypeReached MessageType = "reached" // Waypoint reached and popped

	// Operator → planner
	TypeWaypoint MessageType = "waypoint" // New waypoint
)

// Message is the base wrapper for all websocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Planner → operator message types
// =============================================================================

// ActionType distinguishes physical steps from sensor framing.
type ActionType string

const (
	ActionStep ActionType = "STEP"
	ActionView ActionType = "VIEW"
)

// PlannerAction is one incremental joint command: move NodeName to
// (X, Y, Theta). MajorID increases by one per emitted action for the
// lifetime of the process.
type PlannerAction struct {
	MajorID    uint64     `json:"major_id"`
	NodeName   string     `json:"node_name"`
	ActionType ActionType `json:"action_type"`
	Theta      float64    `json:"theta"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
}

func (a PlannerAction) String() string {
	return fmt.Sprintf("#%d %s %s -> (%.3f, %.3f, %.4f)", a.MajorID, a.ActionType, a.NodeName, a.X, a.Y, a.Theta)
}

// ReachedData reports a popped waypoint
type ReachedData struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Action string  `json:"action"`
	Ticks  uint64  `json:"ticks"` // planner tick count at arrival
}

// =============================================================================
// Operator → planner message types
// =============================================================================

// Units for operator-supplied coordinates
const (
	UnitsMeters = "m"
	UnitsPixels = "px"
)

// WaypointRequest is an operator click or scripted target
type WaypointRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Action string  `json:"action,omitempty"` // "MOVE" (default) or "VIEW"
	Units  string  `json:"units,omitempty"`  // "m" (default) or "px"
}
