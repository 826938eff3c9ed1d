package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// EntryAppendedMessage announces a row appended to a ledger table.
type EntryAppendedMessage struct {
	Table      string    `json:"table"`
	Values     []string  `json:"values"`
	AppendedAt time.Time `json:"appended_at"`
}

// NewEntryAppendedMessage stamps the message with the current time.
func NewEntryAppendedMessage(table string, values []string) *EntryAppendedMessage {
	return &EntryAppendedMessage{
		Table:      table,
		Values:     append([]string(nil), values...),
		AppendedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryAppendedMessageFromJSON decodes a message and checks it names a table.
func EntryAppendedMessageFromJSON(data []byte) (*EntryAppendedMessage, error) {
	var msg EntryAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Table == "" {
		return nil, errors.New("message has no table")
	}
	return &msg, nil
}
