package repository

import (
	"context"
	"errors"

	"promanage/backend/internal/identity/domain"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("identity: email already registered")

// Repository persists users and their single stored refresh fingerprint.
// Lookups return nil, nil when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	ClearRefreshTokenHash(ctx context.Context, id string) error
	// ClearRefreshTokenHashIf clears the stored fingerprint only if it still equals
	// expected, and reports whether a row changed.
	ClearRefreshTokenHashIf(ctx context.Context, id, expected string) (bool, error)
}
