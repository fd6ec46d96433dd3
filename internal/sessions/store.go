package sessions

import (
	"context"
	"errors"

	"github.com/imrishuroy/bonzicart-checkout/internal/checkout"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// Store persists checkout sessions. Save is conditional on the session's
// Version matching the stored one and bumps Version on success.
type Store interface {
	Create(ctx context.Context, s *checkout.Session) error
	Get(ctx context.Context, id string) (*checkout.Session, error)
	Save(ctx context.Context, s *checkout.Session) error
	Delete(ctx context.Context, id string) error
}
