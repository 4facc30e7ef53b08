// Package inflight refuses a mutating call while the same call for the same
// session and resource is still outstanding.  It stands in for disabling a
// button until its request resolves.
package inflight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInFlight is returned by Acquire when the key is already held.
var ErrInFlight = errors.New("already in progress")

// Guard hands out per-key exclusive slots.  The release func is safe to
// call more than once.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Key builds the guard key for operation op on resource in a session.
func Key(sessionID, op, resource string) string {
	return strings.Join([]string{sessionID, op, resource}, ":")
}

// Do runs fn while holding key.  fn is not called when the key is held.
func Do(ctx context.Context, g Guard, key string, fn func() error) error {
	release, err := g.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

const keyPrefix = "eventx:inflight:"

// releaseScript deletes the key only if this owner still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a Guard shared by every server instance.  Slots expire after ttl
// so a crashed request cannot hold one forever.
type Redis struct {
	cli *redis.Client
	ttl time.Duration
}

func NewRedis(cli *redis.Client, ttl time.Duration) *Redis {
	return &Redis{cli: cli, ttl: ttl}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	ok, err := r.cli.SetNX(ctx, keyPrefix+key, owner, r.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInFlight
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's request may already be gone.
			_ = releaseScript.Run(context.WithoutCancel(ctx), r.cli, []string{keyPrefix + key}, owner).Err()
		})
	}, nil
}

// Local is a Guard for a single process.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrInFlight
	}
	l.held[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
