package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
)

type recordRow struct {
	ID               int64          `db:"id"`
	HabitID          int64          `db:"habit_id"`
	Date             string         `db:"date"`
	AchievementLevel int            `db:"achievement_level"`
	CreatedAt        string         `db:"created_at"`
	DeletedAt        sql.NullString `db:"deleted_at"`
}

var recordColumns = []string{"id", "habit_id", "date", "achievement_level", "created_at", "deleted_at"}

func (r recordRow) toModel() (models.HabitRecord, error) {
	rec := models.HabitRecord{
		ID:               r.ID,
		HabitID:          r.HabitID,
		Date:             r.Date,
		AchievementLevel: constants.AchievementLevel(r.AchievementLevel),
	}

	var err error
	if rec.CreatedAt, err = ParseTime(r.CreatedAt); err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to parse created_at for record %d: %w", r.ID, err)
	}
	if rec.DeletedAt, err = parseNullTime(r.DeletedAt); err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to parse deleted_at for record %d: %w", r.ID, err)
	}
	return rec, nil
}

func (s *Store) activeRecords() squirrel.SelectBuilder {
	return s.sb.Select(recordColumns...).From("habit_records").Where("deleted_at IS NULL")
}

func (s *Store) listRecords(ctx context.Context, q squirrel.SelectBuilder) ([]models.HabitRecord, error) {
	var rows []recordRow
	if err := s.selectRows(ctx, &rows, q); err != nil {
		return nil, err
	}

	records := make([]models.HabitRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// CreateRecord inserts a record. A second active record for the same habit
// and date is rejected by the unique index and reported as ErrDuplicate.
func (s *Store) CreateRecord(ctx context.Context, record models.HabitRecord) (models.HabitRecord, error) {
	id, err := s.insertReturningID(ctx, s.sb.Insert("habit_records").
		Columns("habit_id", "date", "achievement_level", "created_at").
		Values(record.HabitID, record.Date, int(record.AchievementLevel), FormatTime(record.CreatedAt)))
	if err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to create record for habit %d on %s: %w", record.HabitID, record.Date, err)
	}
	record.ID = id
	return record, nil
}

func (s *Store) GetRecord(ctx context.Context, id int64) (models.HabitRecord, error) {
	var row recordRow
	if err := s.get(ctx, &row, s.activeRecords().Where("id = ?", id)); err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return row.toModel()
}

func (s *Store) GetRecordForDate(ctx context.Context, habitID int64, date string) (models.HabitRecord, error) {
	var row recordRow
	if err := s.get(ctx, &row, s.activeRecords().Where("habit_id = ? AND date = ?", habitID, date)); err != nil {
		return models.HabitRecord{}, fmt.Errorf("failed to get record for habit %d on %s: %w", habitID, date, err)
	}
	return row.toModel()
}

func (s *Store) ListRecords(ctx context.Context, habitID int64) ([]models.HabitRecord, error) {
	records, err := s.listRecords(ctx, s.activeRecords().
		Where("habit_id = ?", habitID).
		OrderBy("date DESC", "id DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list records for habit %d: %w", habitID, err)
	}
	return records, nil
}

func (s *Store) ListRecordsInRange(ctx context.Context, habitID int64, startDate, endDate string) ([]models.HabitRecord, error) {
	records, err := s.listRecords(ctx, s.activeRecords().
		Where("habit_id = ?", habitID).
		Where(squirrel.GtOrEq{"date": startDate}).
		Where(squirrel.LtOrEq{"date": endDate}).
		OrderBy("date ASC", "id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list records for habit %d between %s and %s: %w", habitID, startDate, endDate, err)
	}
	return records, nil
}

func (s *Store) DeleteRecord(ctx context.Context, id int64, deletedAt time.Time) error {
	err := execAffectingOne(ctx, s.db, s.sb.Update("habit_records").
		Set("deleted_at", FormatTime(deletedAt)).
		Where("id = ? AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("record %d not found or already deleted: %w", id, err)
		}
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	return nil
}

// CountDuplicateRecords counts (habit, date) pairs holding more than one
// active record.
func (s *Store) CountDuplicateRecords(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, &n, s.sb.Select("COUNT(*)").FromSelect(
		s.sb.Select("habit_id", "date").
			From("habit_records").
			Where("deleted_at IS NULL").
			GroupBy("habit_id", "date").
			Having("COUNT(*) > 1"), "dups"))
	if err != nil {
		return 0, fmt.Errorf("failed to count duplicate records: %w", err)
	}
	return n, nil
}

// CountOrphanedRecords counts active records whose habit is soft-deleted
func (s *Store) CountOrphanedRecords(ctx context.Context) (int, error) {
	var n int
	err := s.get(ctx, &n, s.sb.Select("COUNT(*)").
		From("habit_records r").
		Join("habits h ON h.id = r.habit_id").
		Where("r.deleted_at IS NULL AND h.deleted_at IS NOT NULL"))
	if err != nil {
		return 0, fmt.Errorf("failed to count orphaned records: %w", err)
	}
	return n, nil
}
