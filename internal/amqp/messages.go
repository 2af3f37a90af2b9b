package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried on the wire. Publishers pass these values;
// consumers only use them for logging and treat any event as a signal to
// re-fetch.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage announces that the remote record collection changed and
// aggregation needs a fresh pass. It intentionally carries no record
// payload; consumers re-fetch the full collection from the store.
type ChangeMessage struct {
	Op        string    `json:"op"`
	RecordID  string    `json:"record_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage stamps a change event for the given operation.
func NewChangeMessage(op, recordID string) *ChangeMessage {
	return &ChangeMessage{
		Op:        op,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
