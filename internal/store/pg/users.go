package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kiwabc123/supply-admin/internal/auth"
)

// UserStore implements auth.UserStore on Postgres.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserStore = (*UserStore)(nil)

func NewUserStore(s *Store) *UserStore { return &UserStore{db: s.db} }

const userColumns = `id, email, password_hash, name, role, is_active, last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, user *auth.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, email, password_hash, name, role, is_active, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,now(),now())
	`, user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *UserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		update users set password_hash=$2, updated_at=now() where id=$1
	`, userID, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res, auth.ErrNotFound)
}

func (s *UserStore) SetActive(ctx context.Context, userID string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		update users set is_active=$2, updated_at=now() where id=$1
	`, userID, active)
	if err != nil {
		return err
	}
	return requireRow(res, auth.ErrNotFound)
}

func (s *UserStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set last_login=$2 where id=$1
	`, userID, at)
	if err != nil {
		return err
	}
	return requireRow(res, auth.ErrNotFound)
}

// requireRow maps zero affected rows to the caller's not-found sentinel.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
