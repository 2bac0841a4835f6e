// Package session keeps interactive viewer sessions for the HTTP server.
//
// A session owns one live [schematic.Diagram]: its layout, viewport and
// input state machine. Clients create a session, post pointer events and
// commands to it, and fetch the rendered view. Sessions live in memory and
// expire after a period of inactivity; they are not persisted.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL)
//	sess := session.New(diagram, session.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrExpired) {
//	    // ask the client to start over
//	}
//	sess.Do(func(d *schematic.Diagram) {
//	    d.Handle(ev)
//	})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/schematic/pkg/schematic"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has been idle past its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Session is one viewer's diagram. Access the diagram through Do; a Diagram
// is not safe for concurrent use.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	mu      sync.Mutex
	diagram *schematic.Diagram
}

// New creates a session with a fresh random ID.
func New(d *schematic.Diagram, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		diagram:   d,
	}
}

// GenerateID returns a random UUID string.
func GenerateID() string { return uuid.NewString() }

// ValidID reports whether id has the shape GenerateID produces.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Do runs fn with exclusive access to the diagram.
func (s *Session) Do(fn func(d *schematic.Diagram)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.diagram)
}

// IsExpired reports whether the session had expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get returns the session and extends its expiry. It returns ErrNotFound
	// for unknown IDs and ErrExpired for sessions past their TTL.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any with the same ID.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
