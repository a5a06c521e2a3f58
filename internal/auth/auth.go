package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/validation"
)

// UserStore is the subset of storage.Provider the service needs for accounts
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type Config struct {
	SessionTTL time.Duration
	BcryptCost int
}

// RegisterInput is the payload for creating an account
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the payload for opening a session
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is a freshly issued session credential. Value is the only copy of
// the raw token; the store keeps its hash.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

type Service struct {
	users    UserStore
	sessions storage.SessionStore
	cfg      Config
	now      func() time.Time

	// compared against when the email is unknown so both failure paths cost a bcrypt check
	dummyHash []byte
}

type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users UserStore, sessions storage.SessionStore, cfg Config, opts ...Option) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = constants.DefaultSessionTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	s := &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("habitlog-dummy-password"), cfg.BcryptCost)
	return s
}

// HashToken returns the hex SHA-256 of a raw session token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, constants.SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Register creates an account and opens a session for it
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, Token, error) {
	user, err := s.CreateAccount(ctx, in)
	if err != nil {
		return models.User{}, Token{}, err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return models.User{}, Token{}, err
	}
	return user, token, nil
}

// CreateAccount validates the input and stores a new user with a bcrypt
// password hash. Emails are compared case-insensitively.
func (s *Service) CreateAccount(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return models.User{}, apperrors.Validation("email has already been taken")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, apperrors.Internal("lookup user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return models.User{}, apperrors.Internal("hash password", err)
	}

	now := s.now().UTC()
	user, err := s.users.CreateUser(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return models.User{}, apperrors.Validation("email has already been taken")
		}
		return models.User{}, apperrors.Internal("create user", err)
	}

	logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and opens a session. Unknown emails and wrong
// passwords fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (models.User, Token, error) {
	in.Email = validation.NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.User{}, Token{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return models.User{}, Token{}, apperrors.InvalidCredentials()
		}
		return models.User{}, Token{}, apperrors.Internal("lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logger.Debug("Login failed", "user_id", user.ID)
		return models.User{}, Token{}, apperrors.InvalidCredentials()
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return models.User{}, Token{}, err
	}
	return user, token, nil
}

func (s *Service) openSession(ctx context.Context, userID int64) (Token, error) {
	raw, err := newToken()
	if err != nil {
		return Token{}, apperrors.Internal("generate session token", err)
	}

	now := s.now().UTC()
	session := models.Session{
		TokenHash: HashToken(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return Token{}, apperrors.Internal("create session", err)
	}
	return Token{Value: raw, ExpiresAt: session.ExpiresAt}, nil
}

// Logout deletes the session for token. Unknown or empty tokens succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, HashToken(token)); err != nil {
		return apperrors.Internal("delete session", err)
	}
	return nil
}

// CurrentUser resolves token to its user. Expired sessions are removed.
func (s *Service) CurrentUser(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperrors.Unauthenticated()
	}

	hash := HashToken(token)
	session, err := s.sessions.GetSession(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperrors.Unauthenticated()
		}
		return models.User{}, apperrors.Internal("lookup session", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, hash); err != nil {
			logger.Warn("Failed to delete expired session", "error", err)
		}
		return models.User{}, apperrors.Unauthenticated()
	}

	user, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperrors.Unauthenticated()
		}
		return models.User{}, apperrors.Internal("lookup user", err)
	}
	return user, nil
}

// PurgeExpired removes every expired session and returns how many were deleted
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return n, nil
}

// SessionTTL is the lifetime of newly issued sessions
func (s *Service) SessionTTL() time.Duration {
	return s.cfg.SessionTTL
}
