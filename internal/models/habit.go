package models

import (
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
)

// Habit represents a recurring goal owned by a single user
type Habit struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Title     string     `json:"title"`
	ToDo      string     `json:"to_do"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// HabitRecord represents a single day's achievement for a habit
type HabitRecord struct {
	ID               int64                      `json:"id"`
	HabitID          int64                      `json:"habit_id"`
	Date             string                     `json:"date"` // YYYY-MM-DD format
	AchievementLevel constants.AchievementLevel `json:"achievement_level"`
	CreatedAt        time.Time                  `json:"created_at"`
	DeletedAt        *time.Time                 `json:"deleted_at,omitempty"`
}

// HabitDetail is a habit together with its records inside a date window
type HabitDetail struct {
	Habit   Habit         `json:"habit"`
	Records []HabitRecord `json:"records"`
}
