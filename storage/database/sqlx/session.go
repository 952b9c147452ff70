package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ifcet/aula/core/session"
)

// NowFunc returns the current time.
var NowFunc = time.Now // mockable

type (
	// SessionBackend keeps session values in the session_values table.
	// Values expire `ttl` after their last write; a zero ttl keeps them forever.
	SessionBackend struct {
		db  sqlx.ExtContext
		ttl time.Duration
	}

	sessionStore struct {
		b         *SessionBackend
		namespace string
	}
)

var (
	_ session.Backend = (*SessionBackend)(nil)
	_ session.Store   = (*sessionStore)(nil)
)

func NewSessionBackend(db sqlx.ExtContext, ttl time.Duration) *SessionBackend {
	return &SessionBackend{db: db, ttl: ttl}
}

func (b *SessionBackend) Scope(namespace string) session.Store {
	return &sessionStore{b: b, namespace: namespace}
}

// PurgeExpired deletes the expired values and returns how many went.
func (b *SessionBackend) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM session_values WHERE expires_at <= $1`, NowFunc().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purging session values")
	}
	return res.RowsAffected()
}

func (s *sessionStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := sqlx.GetContext(ctx, s.b.db, &value,
		`SELECT value FROM session_values WHERE namespace = $1 AND key = $2 AND (expires_at IS NULL OR expires_at > $3)`,
		s.namespace, key, NowFunc().UTC())
	if err == sql.ErrNoRows {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "selecting session value")
	}
	return value, nil
}

func (s *sessionStore) Set(ctx context.Context, key, value string) error {
	now := NowFunc().UTC()
	var expires null.Time
	if s.b.ttl > 0 {
		expires = null.TimeFrom(now.Add(s.b.ttl))
	}
	_, err := s.b.db.ExecContext(ctx,
		`INSERT INTO session_values (namespace, key, value, expires_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		s.namespace, key, value, expires, now)
	if err != nil {
		return errors.Wrap(err, "saving session value")
	}
	return nil
}

func (s *sessionStore) Remove(ctx context.Context, key string) error {
	if _, err := s.b.db.ExecContext(ctx, `DELETE FROM session_values WHERE namespace = $1 AND key = $2`, s.namespace, key); err != nil {
		return errors.Wrap(err, "deleting session value")
	}
	return nil
}
