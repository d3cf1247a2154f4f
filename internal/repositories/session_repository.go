package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"tenant-portal/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores bearer sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	UpdateEmail(ctx context.Context, uid, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionRepo is a sqlx-backed repository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) CreateSession(ctx context.Context, session models.Session) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO sessions (token, uid, email, role, id_token, created_at, expires_at)
        VALUES (:token, :uid, :email, :role, :id_token, :created_at, :expires_at)`, session)
	return err
}

func (r *SessionRepo) GetSession(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `SELECT token, uid, email, role, id_token, created_at, expires_at FROM sessions WHERE token=$1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	return session, err
}

func (r *SessionRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// UpdateEmail rewrites the e-mail on every open session of uid.
func (r *SessionRepo) UpdateEmail(ctx context.Context, uid, email string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET email=$2 WHERE uid=$1`, uid, email)
	return err
}

// DeleteExpired purges sessions past their expiry and reports how many went.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
