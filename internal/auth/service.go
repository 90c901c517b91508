package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const minPasswordLength = 6

// Authenticator owns credential verification, token issuance and the
// per-request identity liveness policy. It is safe for concurrent use; all
// mutable state lives in the stores.
type Authenticator struct {
	users    UserStore
	sessions SessionStore // optional, may be nil
	codec    *TokenCodec
	now      func() time.Time
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithSessionStore enables persisted session records alongside the stateless
// bearer tokens.
func WithSessionStore(store SessionStore) AuthOption {
	return func(a *Authenticator) {
		a.sessions = store
	}
}

// WithNow overrides the time source. Intended for tests.
func WithNow(fn func() time.Time) AuthOption {
	return func(a *Authenticator) {
		if fn != nil {
			a.now = fn
		}
	}
}

// NewAuthenticator constructs an Authenticator over the given identity store
// and token codec.
func NewAuthenticator(users UserStore, codec *TokenCodec, opts ...AuthOption) (*Authenticator, error) {
	if users == nil {
		return nil, errors.New("auth: user store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	a := &Authenticator{
		users: users,
		codec: codec,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Codec exposes the token codec, mainly for middleware wiring.
func (a *Authenticator) Codec() *TokenCodec {
	return a.codec
}

// Register creates a new account. The role defaults to USER and the account
// starts active. Duplicate emails yield ErrConflict.
func (a *Authenticator) Register(ctx context.Context, email, password, name string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := a.now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed bearer token. Every failure
// mode maps to ErrInvalidCredentials so callers cannot probe which accounts
// exist. On success the user's last-login timestamp is updated and, when a
// session store is configured, a session row is recorded.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, *User, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, time.Time{}, ErrInvalidCredentials
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, time.Time{}, ErrInvalidCredentials
		}
		return "", nil, time.Time{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return "", nil, time.Time{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", nil, time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := a.codec.Issue(user, 0)
	if err != nil {
		return "", nil, time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	now := a.now().UTC()
	if err := a.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return "", nil, time.Time{}, fmt.Errorf("touch last login: %w", err)
	}
	user.LastLogin = &now

	if a.sessions != nil {
		session := &Session{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}
		if err := a.sessions.Create(ctx, session); err != nil {
			return "", nil, time.Time{}, fmt.Errorf("record session: %w", err)
		}
	}

	return token, user, expiresAt, nil
}

// VerifyToken decodes and validates a raw bearer token without touching the
// identity store.
func (a *Authenticator) VerifyToken(raw string) (*Claims, error) {
	return a.codec.Verify(raw)
}

// ResolveIdentity re-checks the claims subject against the identity store so
// deactivated or deleted accounts lose access before their token expires.
// Store faults are wrapped and must be treated as internal errors, not as
// authentication failures.
func (a *Authenticator) ResolveIdentity(ctx context.Context, claims *Claims) (*User, error) {
	if claims == nil || strings.TrimSpace(claims.UID) == "" {
		return nil, ErrInvalidToken
	}
	user, err := a.users.FindByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrIdentityRevoked
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrIdentityRevoked
	}
	return user, nil
}

// Authenticate runs token verification and identity resolution in one call.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*User, *Claims, error) {
	claims, err := a.VerifyToken(raw)
	if err != nil {
		return nil, nil, err
	}
	user, err := a.ResolveIdentity(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the user's persisted sessions when stateful sessions are
// enabled. Stateless tokens remain valid until expiry.
func (a *Authenticator) Logout(ctx context.Context, userID string) error {
	if a.sessions == nil {
		return nil
	}
	return a.sessions.RevokeByUser(ctx, userID)
}
