package habits

import (
	"context"
	"errors"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/validation"
)

// GetRecordForDate returns the active record for date, or nil when the day
// has not been recorded.
func (s *Service) GetRecordForDate(ctx context.Context, ownerID, habitID int64, date string) (*models.HabitRecord, error) {
	if err := validation.Date(date); err != nil {
		return nil, err
	}
	if _, err := s.GetHabit(ctx, ownerID, habitID); err != nil {
		return nil, err
	}

	rec, err := s.store.GetRecordForDate(ctx, habitID, date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("get record", err)
	}
	return &rec, nil
}

// ListRecords returns every active record of the habit, newest first.
// A deleted, missing or foreign habit has no visible records.
func (s *Service) ListRecords(ctx context.Context, ownerID, habitID int64) ([]models.HabitRecord, error) {
	if _, err := s.GetHabit(ctx, ownerID, habitID); err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return []models.HabitRecord{}, nil
		}
		return nil, err
	}

	records, err := s.store.ListRecords(ctx, habitID)
	if err != nil {
		return nil, apperrors.Internal("list records", err)
	}
	return records, nil
}

// CreateRecord records the achievement for one day. The input is validated
// before the store is touched; a second record for the same day is rejected
// by the store's unique index.
func (s *Service) CreateRecord(ctx context.Context, ownerID, habitID int64, in RecordInput) (models.HabitRecord, error) {
	if err := validation.Struct(in); err != nil {
		return models.HabitRecord{}, err
	}
	if _, err := s.GetHabit(ctx, ownerID, habitID); err != nil {
		return models.HabitRecord{}, err
	}

	rec, err := s.store.CreateRecord(ctx, models.HabitRecord{
		HabitID:          habitID,
		Date:             in.Date,
		AchievementLevel: in.AchievementLevel,
		CreatedAt:        s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return models.HabitRecord{}, apperrors.DuplicateRecord(in.Date)
		}
		return models.HabitRecord{}, apperrors.Internal("create record", err)
	}

	logger.Debug("Record created", "habit_id", habitID, "date", in.Date, "level", in.AchievementLevel.String())
	return rec, nil
}

// DeleteRecord soft-deletes a record of the caller's habit
func (s *Service) DeleteRecord(ctx context.Context, ownerID, habitID, recordID int64) error {
	if _, err := s.GetHabit(ctx, ownerID, habitID); err != nil {
		return err
	}

	rec, err := s.store.GetRecord(ctx, recordID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("record")
		}
		return apperrors.Internal("get record", err)
	}
	if rec.HabitID != habitID {
		return apperrors.NotFound("record")
	}

	if err := s.store.DeleteRecord(ctx, recordID, s.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("record")
		}
		return apperrors.Internal("delete record", err)
	}
	return nil
}
