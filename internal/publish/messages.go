package publish

import (
	"encoding/json"
	"time"
)

// AdviceMessage carries one rendered advisory to the chat channel. Sections
// are delivered verbatim, in order.
type AdviceMessage struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []string  `json:"sections"`
}

// ToJSON converts the message to JSON bytes.
func (m *AdviceMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AdviceMessageFromJSON decodes a message.
func AdviceMessageFromJSON(data []byte) (*AdviceMessage, error) {
	var msg AdviceMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
