// Package session holds meeting records between processing and export so
// they can be reviewed and edited. Sessions expire; they are a cache, not
// an archive.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/contentid"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 24 * time.Hour

// Session is one review session.
type Session struct {
	ID        string          `json:"id" yaml:"id"`
	Source    string          `json:"source,omitempty" yaml:"source,omitempty"`
	RunID     string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Record    *minutes.Record `json:"record" yaml:"record"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" yaml:"updated_at"`
}

// New starts a session for rec with a fresh "ms-" id.
func New(rec *minutes.Record, source string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        contentid.New(contentid.KindSession),
		Source:    source,
		Record:    rec,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists sessions for a bounded time. Save refreshes the expiry.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Update loads the session, applies fn to its record and saves it back.
// The record is left untouched in the store if fn fails.
func Update(ctx context.Context, store Store, id string, fn func(r *minutes.Record) error) (*Session, error) {
	s, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Record == nil {
		s.Record = &minutes.Record{}
	}
	if err := fn(s.Record); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now().UTC()
	if err := store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func checkID(id string) error {
	if !contentid.IsValid(id, contentid.KindSession) {
		return fmt.Errorf("%w: invalid session id %q", mnerrors.ErrValidation, id)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: session %s (it may have expired)", mnerrors.ErrNotFound, id)
}
