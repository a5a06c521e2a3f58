// Package backup snapshots and restores the SQLite database file.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/logger"
)

const timestampLayout = "20060102-150405"

var ErrBackupNotFound = errors.New("backup not found")

// Backup describes one snapshot on disk
type Backup struct {
	Name      string
	Path      string
	CreatedAt time.Time
	Size      int64
}

// Manager creates, lists, prunes and restores snapshots kept next to the database
type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source used to name snapshots
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithKeep sets how many snapshots survive pruning
func WithKeep(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.keep = n
		}
	}
}

func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:   constants.MaxBackups,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create snapshots the database with VACUUM INTO and prunes old snapshots
func (m *Manager) Create(ctx context.Context) (Backup, error) {
	return m.create(ctx, true)
}

func (m *Manager) create(ctx context.Context, prune bool) (Backup, error) {
	if _, err := os.Stat(m.dbPath); errors.Is(err, os.ErrNotExist) {
		return Backup{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Backup{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Backup{}, err
	}

	if err := vacuumInto(ctx, m.dbPath, path); err != nil {
		return Backup{}, fmt.Errorf("failed to backup database: %w", err)
	}

	if prune {
		if removed, err := m.Prune(); err != nil {
			logger.Warn("Failed to prune old backups", "error", err)
		} else if removed > 0 {
			logger.Debug("Pruned old backups", "removed", removed)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Backup{}, fmt.Errorf("failed to stat backup: %w", err)
	}
	name := filepath.Base(path)
	created, _ := parseName(name)
	logger.Info("Backup created", "path", path, "size", info.Size())
	return Backup{Name: name, Path: path, CreatedAt: created, Size: info.Size()}, nil
}

// nextPath returns an unused file name for the current second
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().UTC().Format(timestampLayout)
	for i := 0; i < 100; i++ {
		name := constants.BackupFilePrefix + stamp + constants.BackupFileSuffix
		if i > 0 {
			name = fmt.Sprintf("%s%s-%d%s", constants.BackupFilePrefix, stamp, i, constants.BackupFileSuffix)
		}
		path := filepath.Join(m.dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

func vacuumInto(ctx context.Context, src, dst string) error {
	db, err := sql.Open("sqlite", "file:"+src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := checkDatabase(ctx, db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return err
	}
	return nil
}

func checkDatabase(ctx context.Context, db *sql.DB) error {
	var count int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

// parseName extracts the creation time from habitlog-YYYYMMDD-HHMMSS[-N].db
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) < len(timestampLayout) {
		return time.Time{}, false
	}
	if rest := stamp[len(timestampLayout):]; rest != "" && !isCounter(rest) {
		return time.Time{}, false
	}
	t, err := time.Parse(timestampLayout, stamp[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func isCounter(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// List returns the snapshots on disk, newest first
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Backup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Backup{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		created, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Backup{
			Name:      entry.Name(),
			Path:      filepath.Join(m.dir, entry.Name()),
			CreatedAt: created,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Prune deletes the oldest snapshots beyond the retention limit
func (m *Manager) Prune() (int, error) {
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return removed, fmt.Errorf("failed to remove old backup %s: %w", backups[i].Name, err)
		}
		removed++
	}
	return removed, nil
}

// Resolve maps a snapshot name or path to a file inside the backup directory
func (m *Manager) Resolve(nameOrPath string) (string, error) {
	path := nameOrPath
	if !strings.ContainsRune(nameOrPath, filepath.Separator) {
		path = filepath.Join(m.dir, nameOrPath)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrBackupNotFound, nameOrPath)
		}
		return "", err
	}
	return path, nil
}

// Restore replaces the database with the given snapshot. The current database,
// if any, is snapshotted first and that safety copy is returned. The store
// must not be open while restoring.
func (m *Manager) Restore(ctx context.Context, nameOrPath string) (*Backup, error) {
	src, err := m.Resolve(nameOrPath)
	if err != nil {
		return nil, err
	}
	if err := verify(ctx, src); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety *Backup
	if _, err := os.Stat(m.dbPath); err == nil {
		b, err := m.create(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		safety = &b
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(src, tmp); err != nil {
		return nil, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Database restored", "from", src)
	return safety, nil
}

func verify(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return checkDatabase(ctx, db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
