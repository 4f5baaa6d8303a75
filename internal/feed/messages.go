package feed

import (
	"encoding/json"
	"time"
)

// ChangeMessage is the wire form of a record mutation. It carries only
// identifiers; consumers fetch the full record from the backend so the
// queue never holds stale payloads.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(collection, kind, id, ownerID string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Kind:       kind,
		ID:         id,
		OwnerID:    ownerID,
		Timestamp:  time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
