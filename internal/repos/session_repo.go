package repos

import (
	"context"

	"vendorhub/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

func (r *SessionRepo) Bind(ctx context.Context, sid, userID string, now int64) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=excluded.last_seen`, sid, userID, now)
	return err
}

// Get returns sql.ErrNoRows for unknown or unbound sessions.
func (r *SessionRepo) Get(ctx context.Context, sid string) (*domain.Session, error) {
	var s domain.Session
	err := r.DB.GetContext(ctx, &s, `
      SELECT s.id, s.user_id, u.email, COALESCE(s.created_at,'') AS created_at, s.last_seen
      FROM sessions s
      JOIN users u ON u.user_id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Touch(ctx context.Context, sid string, now int64) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET last_seen=? WHERE id=?`, now, sid)
	return err
}

func (r *SessionRepo) Unbind(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET user_id=NULL WHERE id=?`, sid)
	return err
}
