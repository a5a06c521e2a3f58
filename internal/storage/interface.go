package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/julianstephens/habitlog/internal/models"
)

// Provider is the persistence boundary for users, sessions, habits and
// habit records. Implementations return ErrNotFound and ErrDuplicate
// (wrapped) so callers can classify failures with errors.Is.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	SessionStore

	// Habits. Reads only ever see non-deleted habits.
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	ListHabits(ctx context.Context, userID int64) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// DeleteHabit soft-deletes the habit and all of its active records in
	// one transaction.
	DeleteHabit(ctx context.Context, id int64, deletedAt time.Time) error

	// Habit records. Reads only ever see non-deleted records.
	CreateRecord(ctx context.Context, record models.HabitRecord) (models.HabitRecord, error)
	GetRecord(ctx context.Context, id int64) (models.HabitRecord, error)
	GetRecordForDate(ctx context.Context, habitID int64, date string) (models.HabitRecord, error)
	// ListRecords returns every record of the habit, newest date first.
	ListRecords(ctx context.Context, habitID int64) ([]models.HabitRecord, error)
	// ListRecordsInRange returns records with startDate <= date <= endDate,
	// oldest date first.
	ListRecordsInRange(ctx context.Context, habitID int64, startDate, endDate string) ([]models.HabitRecord, error)
	DeleteRecord(ctx context.Context, id int64, deletedAt time.Time) error

	// Diagnostics
	CountDuplicateRecords(ctx context.Context) (int, error)
	CountOrphanedRecords(ctx context.Context) (int, error)
	SchemaVersion() (current, latest int, err error)
	Migrate(logFn func(string)) (int, error)

	// Utils
	GetConfigPath() string
	GetDB() *sql.DB
}

// SessionStore persists login sessions keyed by token hash
type SessionStore interface {
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, tokenHash string) (models.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
