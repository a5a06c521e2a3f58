package backups

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitlog/internal/backup"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

func newInitializedContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
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

func TestBackupCreateListRestore(t *testing.T) {
	ctx, out := newInitializedContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "Backup created: habitlog-") {
		t.Errorf("unexpected output: %s", out.String())
	}

	backups, err := backup.NewManager(ctx.DSN).List()
	if err != nil || len(backups) != 1 {
		t.Fatalf("expected one backup, got %d (%v)", len(backups), err)
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), backups[0].Name) {
		t.Errorf("list output missing %s: %s", backups[0].Name, out.String())
	}

	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: backups[0].Name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database restored successfully") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestBackupRestoreUnknownFile(t *testing.T) {
	ctx, _ := newInitializedContext(t)
	err := (&BackupRestoreCmd{BackupFile: "habitlog-20000101-000000.db", Yes: true}).Run(ctx)
	if !errors.Is(err, backup.ErrBackupNotFound) {
		t.Errorf("expected ErrBackupNotFound, got %v", err)
	}
}

func TestBackupRequiresSQLite(t *testing.T) {
	ctx := cli.NewContext(sqlite.NewStore("unused.db"), "postgres://habitlog@localhost/habitlog")
	ctx.Out = &bytes.Buffer{}

	for name, cmd := range map[string]interface{ Run(*cli.Context) error }{
		"create":  &BackupCreateCmd{},
		"list":    &BackupListCmd{},
		"restore": &BackupRestoreCmd{BackupFile: "x.db", Yes: true},
	} {
		if err := cmd.Run(ctx); !errors.Is(err, cli.ErrSQLiteOnly) {
			t.Errorf("%s: expected ErrSQLiteOnly, got %v", name, err)
		}
	}
}
