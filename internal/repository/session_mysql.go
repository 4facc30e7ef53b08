package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// SessionRepo keeps session records in the MySQL table `sessions`, one row
// per session id.  The identity is stored as a JSON column.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Save inserts or replaces the row for sessionID.
func (r *SessionRepo) Save(ctx context.Context, sessionID string, rec model.SessionRecord, ttl time.Duration) error {
	identity, err := json.Marshal(rec.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		"REPLACE INTO sessions (session_id, token, identity, created_at, expires_at) VALUES (?,?,?,?,?)",
		sessionID, rec.Token, identity, rec.CreatedAt.UTC(), time.Now().UTC().Add(ttl))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load returns the record if a non-expired row exists.
func (r *SessionRepo) Load(ctx context.Context, sessionID string) (model.SessionRecord, error) {
	var (
		rec       model.SessionRecord
		identity  []byte
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT token, identity, created_at, expires_at FROM sessions WHERE session_id=? LIMIT 1",
		sessionID).Scan(&rec.Token, &identity, &rec.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if time.Now().UTC().After(expiresAt) {
		return model.SessionRecord{}, ErrNotFound
	}
	if err := json.Unmarshal(identity, &rec.Identity); err != nil {
		return model.SessionRecord{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the row for sessionID.
func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE session_id=?", sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed and returns how many
// were removed.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
