package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/habitlog/internal/api"
	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/habits"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/utils"
)

type ServeCmd struct {
	Addr         string        `help:"Address to listen on." env:"HABITLOG_ADDR" default:":8080"`
	SessionTTL   time.Duration `help:"Lifetime of a login session." env:"HABITLOG_SESSION_TTL" default:"168h"`
	CookieSecure bool          `help:"Mark the session cookie Secure (requires HTTPS)." env:"HABITLOG_COOKIE_SECURE"`
	CORSOrigins  []string      `help:"Origins allowed to make credentialed cross-origin requests." env:"HABITLOG_CORS_ORIGINS" name:"cors-origins"`
	Timezone     string        `help:"Timezone used to compute calendar days." env:"HABITLOG_TIMEZONE" default:"Local"`
	RedisURL     string        `help:"Keep sessions in Redis instead of the database (redis://host:port/db)." env:"HABITLOG_REDIS_URL"`
	BcryptCost   int           `help:"bcrypt cost for new password hashes." env:"HABITLOG_BCRYPT_COST" default:"10"`
	LoginRate    float64       `help:"Sustained login/register attempts per second per client IP." env:"HABITLOG_LOGIN_RATE" default:"1"`
	LoginBurst   int           `help:"Login/register burst size per client IP." env:"HABITLOG_LOGIN_BURST" default:"5"`
	WindowDays   int           `help:"Days of records returned with a habit detail." env:"HABITLOG_WINDOW_DAYS" default:"30"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return err
	}

	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("database schema is at version %d but %d is required; run '%s migrate'", current, latest, constants.AppName)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := api.Pingers{ctx.Store}
	var sessions storage.SessionStore = ctx.Store
	if c.RedisURL != "" {
		redisStore, err := session.NewRedisStore(runCtx, c.RedisURL)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		sessions = redisStore
		health = append(health, redisStore)
		logger.Info("Using Redis session store")
	}

	authSvc := auth.NewService(ctx.Store, sessions, auth.Config{
		SessionTTL: c.SessionTTL,
		BcryptCost: c.BcryptCost,
	})
	habitSvc := habits.NewService(ctx.Store, habits.WithLocation(loc))

	go purgeSessions(runCtx, authSvc, constants.SessionPurgeInterval)

	srv := api.NewServer(api.Config{
		Addr:         c.Addr,
		CookieSecure: c.CookieSecure,
		CORSOrigins:  c.CORSOrigins,
		LoginRate:    c.LoginRate,
		LoginBurst:   c.LoginBurst,
		WindowDays:   c.WindowDays,
	}, authSvc, habitSvc, health)

	ctx.Printf("habitlog listening on %s (timezone %s)\n", c.Addr, loc)
	return srv.ListenAndServe(runCtx)
}

// purgeSessions deletes expired sessions on every tick until ctx is done
func purgeSessions(ctx context.Context, svc *auth.Service, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("Session purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("Purged expired sessions", "count", n)
			}
		}
	}
}
