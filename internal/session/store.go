// Package session persists one receiving session blob per operator, plus
// secondary keyed payloads used to hand a pallet off to a cooperating
// workflow (catch-weight capture, pallet merge). Writes are last-write-wins
// per operator key: the product model assumes one active terminal per
// operator id, and concurrent requests for the same operator are a misuse
// case, not a supported scenario.
package session

import (
	"context"
	"errors"

	"github.com/groblegark/dockhand/internal/model"
)

// ErrNotFound is returned when no session or secondary payload exists for
// the given key.
var ErrNotFound = errors.New("session: not found")

// Secondary keys for sub-flow hand-off payloads.
const (
	KeyCatchWeight = "catchweight"
	KeyMerge       = "merge"
)

// Store is the session persistence contract. The primary key is the
// operator id; secondary keys carry hand-off payloads addressed by the
// same operator.
type Store interface {
	Get(ctx context.Context, operator string) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, operator string) error

	PutSecondary(ctx context.Context, operator, key string, payload any) error
	GetSecondary(ctx context.Context, operator, key string, dest any) error
	DeleteSecondary(ctx context.Context, operator, key string) error

	Close() error
}
