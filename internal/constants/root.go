package constants

import "time"

// AchievementLevel is the daily outcome recorded for a habit
type AchievementLevel int

const (
	AppName            = "habitlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habitlog/habitlog.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitlog-"
	BackupFileSuffix = ".db"

	// Achievement levels
	AchievementFull    AchievementLevel = 1
	AchievementPartial AchievementLevel = 2
	AchievementNone    AchievementLevel = 3

	// Validation bounds
	MinPasswordLength = 8

	// DefaultWindowDays is the size of the record window returned with a habit detail
	DefaultWindowDays = 30

	// Session constants
	SessionCookieName    = "habitlog_session"
	SessionTokenBytes    = 32
	DefaultSessionTTL    = 7 * 24 * time.Hour
	SessionPurgeInterval = time.Hour

	// Server constants
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLoginRate       = 1.0
	DefaultLoginBurst      = 5
)

// Valid reports whether the level is one of the three known outcomes
func (l AchievementLevel) Valid() bool {
	return l >= AchievementFull && l <= AchievementNone
}

func (l AchievementLevel) String() string {
	switch l {
	case AchievementFull:
		return "achieved"
	case AchievementPartial:
		return "partial"
	case AchievementNone:
		return "missed"
	default:
		return "unknown"
	}
}
