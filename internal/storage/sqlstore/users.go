package sqlstore

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlog/internal/models"
)

type userRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Password  string `db:"password"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

var userColumns = []string{"id", "name", "email", "password", "created_at", "updated_at"}

func (r userRow) toModel() (models.User, error) {
	createdAt, err := ParseTime(r.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse created_at for user %d: %w", r.ID, err)
	}
	updatedAt, err := ParseTime(r.UpdatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse updated_at for user %d: %w", r.ID, err)
	}
	return models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	id, err := s.insertReturningID(ctx, s.sb.Insert("users").
		Columns("name", "email", "password", "created_at", "updated_at").
		Values(user.Name, user.Email, user.PasswordHash, FormatTime(user.CreatedAt), FormatTime(user.UpdatedAt)))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var row userRow
	if err := s.get(ctx, &row, s.sb.Select(userColumns...).From("users").Where("id = ?", id)); err != nil {
		return models.User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return row.toModel()
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var row userRow
	if err := s.get(ctx, &row, s.sb.Select(userColumns...).From("users").Where("email = ?", email)); err != nil {
		return models.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return row.toModel()
}
