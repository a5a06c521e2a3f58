package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
)

// TestStore_Integration runs against HABITLOG_TEST_POSTGRES, e.g.
// postgres://habitlog@localhost:5432/habitlog_test?sslmode=disable
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("HABITLOG_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("HABITLOG_TEST_POSTGRES not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	email := "integration-" + now.Format("20060102150405.000000000") + "@example.com"

	user, err := store.CreateUser(ctx, models.User{Name: "Integration", Email: email, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	habit, err := store.CreateHabit(ctx, models.Habit{UserID: user.ID, Title: "Exercise", ToDo: "move", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	rec := models.HabitRecord{HabitID: habit.ID, Date: "2024-03-20", AchievementLevel: constants.AchievementFull, CreatedAt: now}
	if _, err := store.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if _, err := store.CreateRecord(ctx, rec); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("duplicate CreateRecord error = %v, want ErrDuplicate", err)
	}

	if err := store.DeleteHabit(ctx, habit.ID, now); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	records, err := store.ListRecords(ctx, habit.ID)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected cascade soft-delete, got %d records", len(records))
	}
}
