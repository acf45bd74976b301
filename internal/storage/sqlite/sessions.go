package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mmynk/tripbite/internal/models"
	"github.com/mmynk/tripbite/internal/storage"
)

// CreateSession persists a new session keyed by its token.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	snapshot, err := json.Marshal(session.User)
	if err != nil {
		return errors.Wrap(err, "failed to encode session snapshot")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, snapshot, issued_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.UserID, string(snapshot), session.IssuedAt, session.ExpiresAt,
	)
	if isUniqueViolation(err, "sessions.token") {
		return storage.ErrConflict
	}
	if err != nil {
		return errors.Wrap(err, "failed to insert session")
	}
	return nil
}

// GetSession retrieves a session by token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, snapshot, issued_at, expires_at FROM sessions WHERE token = ?`,
		token,
	)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	return session, nil
}

// ListSessionsByUser retrieves all sessions issued to a user.
func (s *SQLiteStore) ListSessionsByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, user_id, snapshot, issued_at, expires_at FROM sessions WHERE user_id = ? ORDER BY issued_at`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate sessions")
	}
	return sessions, nil
}

// UpdateSession replaces the snapshot and expiry of an existing session.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *models.Session) error {
	snapshot, err := json.Marshal(session.User)
	if err != nil {
		return errors.Wrap(err, "failed to encode session snapshot")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET snapshot = ?, expires_at = ? WHERE token = ?`,
		string(snapshot), session.ExpiresAt, session.Token,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update session")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteSession removes a session. Missing sessions are ignored.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	session := &models.Session{}
	var snapshot string
	if err := row.Scan(&session.Token, &session.UserID, &snapshot, &session.IssuedAt, &session.ExpiresAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &session.User); err != nil {
		return nil, errors.Wrap(err, "failed to decode session snapshot")
	}
	return session, nil
}
