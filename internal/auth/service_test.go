package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubUserStore struct {
	users    map[string]*User // keyed by id
	byEmail  map[string]*User
	failWith error
	touched  map[string]time.Time
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:   map[string]*User{},
		byEmail: map[string]*User{},
		touched: map[string]time.Time{},
	}
}

func (s *stubUserStore) add(u *User) {
	s.users[u.ID] = u
	s.byEmail[u.Email] = u
}

func (s *stubUserStore) Create(ctx context.Context, user *User) error {
	if s.failWith != nil {
		return s.failWith
	}
	if _, exists := s.byEmail[user.Email]; exists {
		return ErrConflict
	}
	s.add(user)
	return nil
}

func (s *stubUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *stubUserStore) SetActive(ctx context.Context, userID string, active bool) error {
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (s *stubUserStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	s.touched[userID] = at
	return nil
}

type stubSessionStore struct {
	created []*Session
	revoked []string
}

func (s *stubSessionStore) Create(ctx context.Context, session *Session) error {
	s.created = append(s.created, session)
	return nil
}

func (s *stubSessionStore) RevokeByUser(ctx context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

func (s *stubSessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestAuthenticator(t *testing.T, store *stubUserStore, opts ...AuthOption) *Authenticator {
	t.Helper()
	codec, err := NewTokenCodec("test-secret", "supply-admin")
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	a, err := NewAuthenticator(store, codec, opts...)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

func seedUser(t *testing.T, store *stubUserStore, email, password string, role Role) *User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		Role:         role,
		IsActive:     true,
	}
	store.add(u)
	return u
}

func TestRegisterDefaults(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)

	user, err := a.Register(context.Background(), "alice@example.com", "s3cret!", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role USER, got %s", user.Role)
	}
	if !user.IsActive {
		t.Fatal("expected new account to be active")
	}
	if user.PasswordHash == "s3cret!" || user.PasswordHash == "" {
		t.Fatal("password must be stored as a digest")
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestRegisterValidation(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	ctx := context.Background()

	cases := []struct {
		email, password, name string
	}{
		{"", "s3cret!", "Alice"},
		{"not-an-email", "s3cret!", "Alice"},
		{"alice@example.com", "short", "Alice"},
		{"alice@example.com", "s3cret!", ""},
	}
	for _, tc := range cases {
		if _, err := a.Register(ctx, tc.email, tc.password, tc.name); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Register(%q,%q,%q): expected ErrInvalidInput, got %v", tc.email, tc.password, tc.name, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice@example.com", "s3cret!", "Alice"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := a.Register(ctx, "alice@example.com", "other-s3cret", "Alice Again"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	seedUser(t, store, "alice@example.com", "s3cret!", RoleUser)

	token, user, expiresAt, err := a.Login(context.Background(), "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %s", user.Email)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}
	if _, ok := store.touched[user.ID]; !ok {
		t.Fatal("expected last-login to be updated")
	}

	claims, err := a.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UID != user.ID || claims.Email != user.Email || claims.Role != RoleUser {
		t.Fatalf("claims do not match identity: %+v", claims)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	alice := seedUser(t, store, "alice@example.com", "s3cret!", RoleUser)
	ctx := context.Background()

	if _, _, _, err := a.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := a.Login(ctx, "nobody@example.com", "s3cret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	alice.IsActive = false
	if _, _, _, err := a.Login(ctx, "alice@example.com", "s3cret!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("inactive account: expected ErrInvalidCredentials, got %v", err)
	}
	if len(store.touched) != 0 {
		t.Fatal("failed logins must not update last-login")
	}
}

func TestLoginRecordsSessionWhenConfigured(t *testing.T) {
	store := newStubUserStore()
	sessions := &stubSessionStore{}
	a := newTestAuthenticator(t, store, WithSessionStore(sessions))
	alice := seedUser(t, store, "alice@example.com", "s3cret!", RoleUser)

	token, _, expiresAt, err := a.Login(context.Background(), "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session record, got %d", len(sessions.created))
	}
	rec := sessions.created[0]
	if rec.UserID != alice.ID || rec.Token != token || !rec.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("unexpected session record: %+v", rec)
	}

	if err := a.Logout(context.Background(), alice.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != alice.ID {
		t.Fatalf("expected revocation for %s, got %v", alice.ID, sessions.revoked)
	}
}

func TestResolveIdentityRevocation(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	alice := seedUser(t, store, "alice@example.com", "s3cret!", RoleUser)
	ctx := context.Background()

	token, _, _, err := a.Login(ctx, "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Deactivation after issuance revokes access before the token expires.
	alice.IsActive = false
	if _, _, err := a.Authenticate(ctx, token); !errors.Is(err, ErrIdentityRevoked) {
		t.Fatalf("deactivated: expected ErrIdentityRevoked, got %v", err)
	}

	delete(store.users, alice.ID)
	if _, _, err := a.Authenticate(ctx, token); !errors.Is(err, ErrIdentityRevoked) {
		t.Fatalf("deleted: expected ErrIdentityRevoked, got %v", err)
	}
}

func TestResolveIdentityStoreFaultIsInternal(t *testing.T) {
	store := newStubUserStore()
	a := newTestAuthenticator(t, store)
	seedUser(t, store, "alice@example.com", "s3cret!", RoleUser)

	token, _, _, err := a.Login(context.Background(), "alice@example.com", "s3cret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.failWith = errors.New("connection reset")
	_, _, err = a.Authenticate(context.Background(), token)
	if err == nil {
		t.Fatal("expected error from failing store")
	}
	if errors.Is(err, ErrIdentityRevoked) || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("store fault must not masquerade as an auth failure: %v", err)
	}
}
