package handler

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/inflight"
)

// lockScreen holds one piece of a session's screen state (a draft or the
// booking board) for a whole load, mutate and store cycle.  A second
// action on the same state meanwhile gets inflight.ErrInFlight.
func lockScreen(ctx context.Context, g inflight.Guard, sessionID, key string) (func(), error) {
	return g.Acquire(ctx, inflight.Key(sessionID, "screen", key))
}
