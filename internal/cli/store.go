package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/keyring"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/storage/postgres"
	"github.com/julianstephens/habitlog/internal/storage/sqlite"
)

var ErrSQLiteOnly = errors.New("this command only supports SQLite storage")

// IsPostgres reports whether dsn is a PostgreSQL connection string
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ResolveDSN picks the database to use. An explicit value wins; otherwise a
// connection string saved in the OS keyring is used, then the default SQLite path.
func ResolveDSN(dsn string) (resolved string, fromKeyring bool, err error) {
	if dsn == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			return connStr, true, nil
		case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
			logger.Debug("No connection string in keyring, using default SQLite path", "error", err)
		default:
			return "", false, err
		}
		dsn = constants.DefaultConfigPath
	}

	if IsPostgres(dsn) {
		return dsn, false, nil
	}
	path, err := ExpandHome(dsn)
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

// NewStore builds the storage provider for dsn. Connection strings passed on
// the command line must not embed a password; the keyring is a safe place for one.
func NewStore(dsn string, fromKeyring bool) (storage.Provider, error) {
	if !IsPostgres(dsn) {
		return sqlite.NewStore(dsn), nil
	}

	if _, err := postgres.ValidateConnString(dsn); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		if !fromKeyring {
			return nil, fmt.Errorf("%w: store the connection string with '%s config set-connection', or use PGPASSWORD or .pgpass",
				err, constants.AppName)
		}
	}
	return postgres.New(dsn), nil
}

// DataDir is where logs and other local files live for dsn
func DataDir(dsn string) string {
	if !IsPostgres(dsn) && dsn != "" {
		return filepath.Dir(dsn)
	}
	path, err := ExpandHome(constants.DefaultConfigPath)
	if err != nil {
		return os.TempDir()
	}
	return filepath.Dir(path)
}

// MaskPassword hides the password of a connection string for display
func MaskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		if idx := strings.Index(connStr, "://"); idx != -1 {
			remaining := connStr[idx+3:]
			if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
				userInfo := remaining[:atIdx]
				if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
					return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
				}
			}
		}
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
