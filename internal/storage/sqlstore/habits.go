package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
)

type habitRow struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Title     string         `db:"title"`
	ToDo      string         `db:"to_do"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
	DeletedAt sql.NullString `db:"deleted_at"`
}

var habitColumns = []string{"id", "user_id", "title", "to_do", "created_at", "updated_at", "deleted_at"}

func (r habitRow) toModel() (models.Habit, error) {
	h := models.Habit{
		ID:     r.ID,
		UserID: r.UserID,
		Title:  r.Title,
		ToDo:   r.ToDo,
	}

	var err error
	if h.CreatedAt, err = ParseTime(r.CreatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %d: %w", r.ID, err)
	}
	if h.UpdatedAt, err = ParseTime(r.UpdatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %d: %w", r.ID, err)
	}
	if h.DeletedAt, err = parseNullTime(r.DeletedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse deleted_at for habit %d: %w", r.ID, err)
	}
	return h, nil
}

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	id, err := s.insertReturningID(ctx, s.sb.Insert("habits").
		Columns("user_id", "title", "to_do", "created_at", "updated_at").
		Values(habit.UserID, habit.Title, habit.ToDo, FormatTime(habit.CreatedAt), FormatTime(habit.UpdatedAt)))
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	habit.ID = id
	return habit, nil
}

func (s *Store) GetHabit(ctx context.Context, id int64) (models.Habit, error) {
	var row habitRow
	err := s.get(ctx, &row, s.sb.Select(habitColumns...).
		From("habits").
		Where("id = ? AND deleted_at IS NULL", id))
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit %d: %w", id, err)
	}
	return row.toModel()
}

func (s *Store) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	var rows []habitRow
	err := s.selectRows(ctx, &rows, s.sb.Select(habitColumns...).
		From("habits").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	habits := make([]models.Habit, 0, len(rows))
	for _, row := range rows {
		h, err := row.toModel()
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) error {
	err := execAffectingOne(ctx, s.db, s.sb.Update("habits").
		Set("title", habit.Title).
		Set("to_do", habit.ToDo).
		Set("updated_at", FormatTime(habit.UpdatedAt)).
		Where("id = ? AND deleted_at IS NULL", habit.ID))
	if err != nil {
		return fmt.Errorf("failed to update habit %d: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, id int64, deletedAt time.Time) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stamp := FormatTime(deletedAt)
	err = execAffectingOne(ctx, tx, s.sb.Update("habits").
		Set("deleted_at", stamp).
		Set("updated_at", stamp).
		Where("id = ? AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit %d not found or already deleted: %w", id, err)
		}
		return fmt.Errorf("failed to delete habit %d: %w", id, err)
	}

	query, args, err := s.sb.Update("habit_records").
		Set("deleted_at", stamp).
		Where("habit_id = ? AND deleted_at IS NULL", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete records of habit %d: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit deletion: %w", err)
	}
	return nil
}
