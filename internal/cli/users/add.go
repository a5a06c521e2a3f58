package users

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/validation"
)

// UserAddCmd creates an account. Missing fields are prompted for when stdin is a terminal.
type UserAddCmd struct {
	Name       string `help:"Display name."`
	Email      string `help:"Login email address."`
	Password   string `help:"Password (prompted when omitted)." env:"HABITLOG_USER_PASSWORD"`
	BcryptCost int    `help:"bcrypt cost for the password hash." env:"HABITLOG_BCRYPT_COST" default:"10"`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	if c.Name == "" || c.Email == "" || c.Password == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return fmt.Errorf("--name, --email and --password are required when not running interactively")
		}
		if err := c.prompt(); err != nil {
			return err
		}
	}

	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	svc := auth.NewService(ctx.Store, ctx.Store, auth.Config{BcryptCost: c.BcryptCost})
	user, err := svc.CreateAccount(context.Background(), auth.RegisterInput{
		Name:     c.Name,
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return err
	}

	ctx.Printf("✓ Created user %d (%s)\n", user.ID, user.Email)
	return nil
}

func (c *UserAddCmd) prompt() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&c.Name).
				Validate(huh.ValidateNotEmpty()),
			huh.NewInput().
				Title("Email").
				Value(&c.Email).
				Validate(func(s string) error {
					if validation.NormalizeEmail(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(func(s string) error {
					if len(s) < constants.MinPasswordLength {
						return fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
					}
					return nil
				}),
		),
	).Run()
}
