package repository

import (
	"context"
	"time"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// SessionRepository stores one SessionRecord per opaque session id.  Save
// replaces the whole record and Delete removes it; records are never
// merged.
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, rec model.SessionRecord, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (model.SessionRecord, error)
	Delete(ctx context.Context, sessionID string) error
}
