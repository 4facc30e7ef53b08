package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/eventx-studio/internal/model"
)

type memoryEntry struct {
	rec     model.SessionRecord
	expires time.Time
}

// MemorySessionRepository keeps records in process memory.  Used when
// SESSION_STORE=memory and in tests; records are lost on restart.
type MemorySessionRepository struct {
	mu      sync.Mutex
	records map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{records: make(map[string]memoryEntry), now: time.Now}
}

func (r *MemorySessionRepository) Save(_ context.Context, sessionID string, rec model.SessionRecord, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[sessionID] = memoryEntry{rec: rec, expires: r.now().Add(ttl)}
	return nil
}

func (r *MemorySessionRepository) Load(_ context.Context, sessionID string) (model.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.records[sessionID]
	if !ok {
		return model.SessionRecord{}, ErrNotFound
	}
	if r.now().After(e.expires) {
		delete(r.records, sessionID)
		return model.SessionRecord{}, ErrNotFound
	}
	return e.rec, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, sessionID)
	return nil
}
