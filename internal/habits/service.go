package habits

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/utils"
	"github.com/julianstephens/habitlog/internal/validation"
)

// Store is the subset of storage.Provider used for habits and records
type Store interface {
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	ListHabits(ctx context.Context, userID int64) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	DeleteHabit(ctx context.Context, id int64, deletedAt time.Time) error

	CreateRecord(ctx context.Context, record models.HabitRecord) (models.HabitRecord, error)
	GetRecord(ctx context.Context, id int64) (models.HabitRecord, error)
	GetRecordForDate(ctx context.Context, habitID int64, date string) (models.HabitRecord, error)
	ListRecords(ctx context.Context, habitID int64) ([]models.HabitRecord, error)
	ListRecordsInRange(ctx context.Context, habitID int64, startDate, endDate string) ([]models.HabitRecord, error)
	DeleteRecord(ctx context.Context, id int64, deletedAt time.Time) error
}

// HabitInput is the payload for creating or replacing a habit
type HabitInput struct {
	Title string `json:"title" validate:"required,max=255"`
	ToDo  string `json:"to_do" validate:"required"`
}

// RecordInput is the payload for recording a day
type RecordInput struct {
	Date             string                     `json:"date" validate:"required,calendar_date"`
	AchievementLevel constants.AchievementLevel `json:"achievement_level" validate:"required,achievement_level"`
}

// Service owns habits and their daily records. Every operation is scoped
// to the calling user: habits owned by someone else are reported as not found.
type Service struct {
	store    Store
	location *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone used to decide which calendar day is today
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListHabits(ctx context.Context, ownerID int64) ([]models.Habit, error) {
	habits, err := s.store.ListHabits(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("list habits", err)
	}
	return habits, nil
}

func normalizeHabit(in HabitInput) (HabitInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.ToDo = strings.TrimSpace(in.ToDo)
	if err := validation.Struct(in); err != nil {
		return HabitInput{}, err
	}
	return in, nil
}

func (s *Service) CreateHabit(ctx context.Context, ownerID int64, in HabitInput) (models.Habit, error) {
	in, err := normalizeHabit(in)
	if err != nil {
		return models.Habit{}, err
	}

	now := s.now().UTC()
	habit, err := s.store.CreateHabit(ctx, models.Habit{
		UserID:    ownerID,
		Title:     in.Title,
		ToDo:      in.ToDo,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.Habit{}, apperrors.Internal("create habit", err)
	}

	logger.Debug("Habit created", "habit_id", habit.ID, "user_id", ownerID)
	return habit, nil
}

// GetHabit returns the caller's active habit
func (s *Service) GetHabit(ctx context.Context, ownerID, habitID int64) (models.Habit, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, apperrors.NotFound("habit")
		}
		return models.Habit{}, apperrors.Internal("get habit", err)
	}
	if habit.UserID != ownerID {
		return models.Habit{}, apperrors.NotFound("habit")
	}
	return habit, nil
}

// GetHabitWithRecords returns the habit with its records from the last
// windowDays calendar days, today included, oldest first.
func (s *Service) GetHabitWithRecords(ctx context.Context, ownerID, habitID int64, windowDays int) (models.HabitDetail, error) {
	habit, err := s.GetHabit(ctx, ownerID, habitID)
	if err != nil {
		return models.HabitDetail{}, err
	}

	if windowDays <= 0 {
		windowDays = constants.DefaultWindowDays
	}
	start, end := utils.Window(s.now(), s.location, windowDays)

	records, err := s.store.ListRecordsInRange(ctx, habit.ID, start, end)
	if err != nil {
		return models.HabitDetail{}, apperrors.Internal("list habit window", err)
	}
	return models.HabitDetail{Habit: habit, Records: records}, nil
}

// UpdateHabit replaces the title and to_do of the caller's habit
func (s *Service) UpdateHabit(ctx context.Context, ownerID, habitID int64, in HabitInput) (models.Habit, error) {
	in, err := normalizeHabit(in)
	if err != nil {
		return models.Habit{}, err
	}

	habit, err := s.GetHabit(ctx, ownerID, habitID)
	if err != nil {
		return models.Habit{}, err
	}

	habit.Title = in.Title
	habit.ToDo = in.ToDo
	habit.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateHabit(ctx, habit); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, apperrors.NotFound("habit")
		}
		return models.Habit{}, apperrors.Internal("update habit", err)
	}
	return habit, nil
}

// DeleteHabit soft-deletes the caller's habit together with its records.
// Deleting a habit twice reports not found.
func (s *Service) DeleteHabit(ctx context.Context, ownerID, habitID int64) error {
	if _, err := s.GetHabit(ctx, ownerID, habitID); err != nil {
		return err
	}

	if err := s.store.DeleteHabit(ctx, habitID, s.now().UTC()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("habit")
		}
		return apperrors.Internal("delete habit", err)
	}

	logger.Debug("Habit deleted", "habit_id", habitID, "user_id", ownerID)
	return nil
}
