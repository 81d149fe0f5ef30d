package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SQLiteStore keeps sessions in the local database, sharing the connection
// pool with the legacy storage layer.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Create(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, name, email, provider, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.Token, sess.UserID, sess.Name, sess.Email, sess.Provider, sess.CreatedAt.UTC(), sess.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get returns the session for token. Expired sessions are misses and are
// removed opportunistically.
func (s *SQLiteStore) Get(ctx context.Context, token string) (Session, bool, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, name, email, provider, created_at, expires_at
		 FROM sessions WHERE token = ?`, token).
		Scan(&sess.Token, &sess.UserID, &sess.Name, &sess.Email, &sess.Provider, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.Delete(ctx, token); err != nil {
			slog.WarnContext(ctx, "Failed to remove expired session", "error", err)
		}
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes all sessions past their TTL and returns how many were
// removed. Called periodically from the server process.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
