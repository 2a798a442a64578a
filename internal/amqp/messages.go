package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// AssetChangedMessage announces a persisted change to the asset collection.
// It carries only the asset id and the store revision; consumers read the
// collection itself if they need details. Origin names the publishing
// instance.
type AssetChangedMessage struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Revision  int64     `json:"revision"`
	Origin    string    `json:"origin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAssetChangedMessage creates a message stamped with the current time
func NewAssetChangedMessage(event, id string, revision int64) *AssetChangedMessage {
	return &AssetChangedMessage{
		Event:     event,
		ID:        id,
		Revision:  revision,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AssetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AssetChangedMessageFromJSON creates a message from JSON bytes
func AssetChangedMessageFromJSON(data []byte) (*AssetChangedMessage, error) {
	var msg AssetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("message has no event")
	}
	return &msg, nil
}
