// Package repository persists what the web client must remember between
// requests: the session record (token + identity) and per-session screen
// state such as edit drafts and booking boards.  Business data itself is
// never stored here; it belongs to the EventX API.
package repository

import "errors"

// ErrNotFound is returned when no record exists for a key, including a
// record that has expired.  Callers treat it as "nothing persisted".
var ErrNotFound = errors.New("not found")

// ErrUnavailable wraps failures of the underlying store.  A session
// bootstrap that hits it stays in the loading state instead of deciding
// the user is signed out.
var ErrUnavailable = errors.New("store unavailable")
