package users

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitlog/internal/cli"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

func newContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitlog.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	store.Close()

	out := &bytes.Buffer{}
	ctx := cli.NewContext(sqlite.NewStore(dbPath), dbPath)
	ctx.Out = out
	return ctx, out
}

func TestUserAdd(t *testing.T) {
	ctx, out := newContext(t)
	cmd := &UserAddCmd{Name: "Ops", Email: "Ops@Example.com", Password: "password1", BcryptCost: bcrypt.MinCost}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("user add failed: %v", err)
	}
	if !strings.Contains(out.String(), "ops@example.com") {
		t.Errorf("unexpected output: %s", out.String())
	}

	store := sqlite.NewStore(ctx.DSN)
	if err := store.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	defer store.Close()

	user, err := store.GetUserByEmail(context.Background(), "ops@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestUserAddValidation(t *testing.T) {
	ctx, _ := newContext(t)

	err := (&UserAddCmd{Name: "Ops", Email: "ops@example.com", Password: "short", BcryptCost: bcrypt.MinCost}).Run(ctx)
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	if err := (&UserAddCmd{Name: "Ops", Email: "ops@example.com", Password: "password1", BcryptCost: bcrypt.MinCost}).Run(ctx); err != nil {
		t.Fatalf("user add failed: %v", err)
	}
	err = (&UserAddCmd{Name: "Ops", Email: "OPS@example.com", Password: "password1", BcryptCost: bcrypt.MinCost}).Run(ctx)
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("expected duplicate email to be rejected, got %v", err)
	}
}
