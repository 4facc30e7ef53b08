package model

import "time"

// SessionRecord is what survives a reload: the backend token and the
// identity it was issued for.  It is always written and deleted whole.
type SessionRecord struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"createdAt"`
}

// Complete reports whether both halves of the record are present.
func (r SessionRecord) Complete() bool {
	return r.Token != "" && (r.Identity.ID != "" || r.Identity.Email != "")
}
