package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/kiwabc123/supply-admin/internal/auth"
)

// SessionStore implements auth.SessionStore on Postgres.
type SessionStore struct {
	db *sql.DB
}

var _ auth.SessionStore = (*SessionStore)(nil)

func NewSessionStore(s *Store) *SessionStore { return &SessionStore{db: s.db} }

func (s *SessionStore) Create(ctx context.Context, session *auth.Session) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions(id, user_id, token, expires_at, created_at)
		values ($1,$2,$3,$4,now())
	`, session.ID, session.UserID, session.Token, session.ExpiresAt)
	if isUniqueViolation(err) {
		return auth.ErrConflict
	}
	return err
}

func (s *SessionStore) RevokeByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `delete from sessions where user_id=$1`, userID)
	return err
}

func (s *SessionStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from sessions where expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
