package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/cli"
)

type SessionPurgeCmd struct{}

func (c *SessionPurgeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	n, err := auth.NewService(ctx.Store, ctx.Store, auth.Config{}).PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	ctx.Printf("✓ Purged %d expired session(s)\n", n)
	return nil
}
