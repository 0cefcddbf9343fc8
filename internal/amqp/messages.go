package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"studentspend/internal/core"
)

// LedgerEventMessage is the wire envelope for a core.Event.
type LedgerEventMessage struct {
	Event     core.Event `json:"event"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewLedgerEventMessage wraps ev with the publish time.
func NewLedgerEventMessage(ev core.Event) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:     ev,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message and rejects envelopes without
// an event type.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event.Type == "" {
		return nil, errors.New("message has no event type")
	}
	return &msg, nil
}
