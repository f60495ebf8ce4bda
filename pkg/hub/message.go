// Package hub fans planner events out to websocket subscribers.
//
// A Hub owns its client set on a single goroutine; producers call
// Broadcast, which never blocks.
package hub

import (
	"encoding/json"
	"fmt"
)

// MessageType selects the websocket frame type.
type MessageType int

const (
	// TextMessage carries UTF-8 text (JSON or CSV lines).
	TextMessage MessageType = iota
	// BinaryMessage carries raw bytes.
	BinaryMessage
)

// Message is one frame queued for every client.
type Message struct {
	Type MessageType
	Data []byte
}

// NewTextMessage wraps pre-encoded text.
func NewTextMessage(data []byte) Message {
	return Message{Type: TextMessage, Data: data}
}

// NewJSONMessage marshals v into a text message.
func NewJSONMessage(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encode hub message: %w", err)
	}
	return NewTextMessage(data), nil
}
