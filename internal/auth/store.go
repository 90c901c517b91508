package auth

import (
	"context"
	"time"
)

// UserStore describes identity persistence. Implementations must guarantee
// email uniqueness at the storage layer and honor context cancellation.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetActive(ctx context.Context, userID string, active bool) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// SessionStore manages optional persisted session records. The token codec
// never consults it; it exists for bookkeeping and administrative revocation.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	RevokeByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
