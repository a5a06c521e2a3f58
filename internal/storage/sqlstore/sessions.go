package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/models"
)

type sessionRow struct {
	TokenHash string `db:"token_hash"`
	UserID    int64  `db:"user_id"`
	CreatedAt string `db:"created_at"`
	ExpiresAt string `db:"expires_at"`
}

func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	query, args, err := s.sb.Insert("sessions").
		Columns("token_hash", "user_id", "created_at", "expires_at").
		Values(session.TokenHash, session.UserID, FormatTime(session.CreatedAt), FormatTime(session.ExpiresAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create session: %w", s.mapError(err))
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, tokenHash string) (models.Session, error) {
	var row sessionRow
	err := s.get(ctx, &row, s.sb.Select("token_hash", "user_id", "created_at", "expires_at").
		From("sessions").
		Where("token_hash = ?", tokenHash))
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	createdAt, err := ParseTime(row.CreatedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to parse session created_at: %w", err)
	}
	expiresAt, err := ParseTime(row.ExpiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to parse session expires_at: %w", err)
	}
	return models.Session{
		TokenHash: row.TokenHash,
		UserID:    row.UserID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// DeleteSession removes a session. Deleting an unknown session is not an error.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	query, args, err := s.sb.Delete("sessions").Where("token_hash = ?", tokenHash).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := s.sb.Delete("sessions").Where("expires_at <= ?", FormatTime(now)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return result.RowsAffected()
}
