package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"stockroom/internal/domain"
)

const userCols = `id, email, name, password_hash, role`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
  SELECT `+userCols+`
  FROM users
  WHERE LOWER(email) = LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// BindSession points the sid at a user, creating the session row on first
// sight. Logging in again on the same cookie just retargets it.
func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`
  INSERT INTO sessions(id, user_id, last_seen)
  VALUES (?, ?, CURRENT_TIMESTAMP)
  ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = CURRENT_TIMESTAMP`,
		sid, userID)
	return err
}

// SessionUser resolves a sid to its account and stamps the session's
// last_seen on the way through.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
  SELECT u.id, u.email, u.name, u.password_hash, u.role
  FROM sessions s
  JOIN users u ON u.id = s.user_id
  WHERE s.id = ?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_, _ = r.DB.Exec(`UPDATE sessions SET last_seen = CURRENT_TIMESTAMP WHERE id = ?`, sid)
	return &u, nil
}

// UnbindSession logs the session out but keeps the row, so the cookie can
// be reused on the next login.
func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`
  UPDATE sessions
  SET user_id = NULL, last_seen = CURRENT_TIMESTAMP
  WHERE id = ?`, sid)
	return err
}
