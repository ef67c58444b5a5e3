// Package ports declares the interfaces termwise adapters implement.
package ports

import (
	"context"
	"errors"

	"github.com/njchilds90/termwise"
)

// ErrSessionNotFound is returned by Load when no session has the given ID.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidSessionID is returned for IDs a store cannot use as a key,
// such as the empty string or one containing a path separator.
var ErrInvalidSessionID = errors.New("invalid session ID")

// SessionStore persists game sessions between commands or tool calls.
type SessionStore interface {
	// Save persists s under s.ID, replacing any earlier version.
	Save(ctx context.Context, s *termwise.Session) error

	// Load retrieves a session. Returns ErrSessionNotFound if it does not
	// exist. The returned session is the caller's to modify.
	Load(ctx context.Context, id string) (*termwise.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
