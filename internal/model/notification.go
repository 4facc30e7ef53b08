package model

import (
	"encoding/json"
	"time"
)

// Notification is one entry of the bell dropdown.  IsRead is the only field
// the client may change, and only after the backend confirms it.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

func (n *Notification) UnmarshalJSON(b []byte) error {
	type alias Notification
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = aux.MongoID
	}
	return nil
}
