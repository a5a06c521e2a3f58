// Package sqlstore implements the storage.Provider data operations on top
// of sqlx and squirrel. The sqlite and postgres packages own the connection
// lifecycle and hand an open database to New.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/julianstephens/habitlog/internal/storage"
)

// TimeLayout is the fixed-width UTC layout used for every timestamp column,
// so lexical order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Dialect carries what differs between the supported databases
type Dialect struct {
	// DriverName is the database/sql driver name, used by sqlx for bindvars
	DriverName string
	// Placeholder is the squirrel placeholder format for the driver
	Placeholder squirrel.PlaceholderFormat
	// IsUniqueViolation reports whether err is the driver's unique constraint error
	IsUniqueViolation func(error) bool
}

type Store struct {
	db      *sqlx.DB
	sb      squirrel.StatementBuilderType
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      sqlx.NewDb(db, dialect.DriverName),
		sb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
		dialect: dialect,
	}
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sql.DB {
	return s.db.DB
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FormatTime renders t in TimeLayout
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp column. RFC3339 values written by other
// tools are accepted as well.
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := ParseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// mapError translates driver errors to storage sentinels
func (s *Store) mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return storage.ErrNotFound
	case s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	default:
		return err
	}
}

func (s *Store) get(ctx context.Context, dest interface{}, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return s.mapError(s.db.GetContext(ctx, dest, query, args...))
}

func (s *Store) selectRows(ctx context.Context, dest interface{}, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	return s.mapError(s.db.SelectContext(ctx, dest, query, args...))
}

// insertReturningID runs an INSERT ... RETURNING id and returns the new id
func (s *Store) insertReturningID(ctx context.Context, q squirrel.InsertBuilder) (int64, error) {
	query, args, err := q.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}
	var id int64
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, s.mapError(err)
	}
	return id, nil
}

// execAffectingOne runs q and reports ErrNotFound when no row changed
func execAffectingOne(ctx context.Context, ext sqlx.ExecerContext, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	result, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}
