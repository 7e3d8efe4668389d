package session

import "context"

// Store persists sessions keyed by user identifier.
//
// Get returns false for a missing or expired session; an expired record is
// removed as a side effect and never returned. Reads do not refresh the
// inactivity deadline, only Put does.
type Store interface {
	Get(ctx context.Context, userID string) (*Session, bool)
	Put(ctx context.Context, userID string, s *Session) error
	Remove(ctx context.Context, userID string) error
	Clear(ctx context.Context) error
}
