package account

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/validation"
)

type SignupCmd struct {
	Email    string `short:"e" help:"Account email. Prompted for when omitted."`
	Username string `short:"u" help:"Display name. Prompted for when omitted."`
	Password string `help:"Account password. Prompted for, with confirmation, when omitted." env:"KAIROS_PASSWORD"`
}

func (c *SignupCmd) Run(ctx *cli.Context) error {
	creds := validation.Credentials{
		Email:    c.Email,
		Username: c.Username,
		Password: c.Password,
	}
	if c.Password != "" {
		creds.ConfirmPassword = c.Password
	}
	if creds.Email == "" || creds.Username == "" || creds.Password == "" {
		if err := promptCredentials(validation.SignUp, &creds); err != nil {
			return err
		}
	}

	m, err := ctx.Auth()
	if err != nil {
		return err
	}
	profile, err := m.Signup(ctx.Context(), creds)
	if profile == nil {
		return err
	}
	ctx.PurgeCache(ctx.Context())

	ctx.Printf("✓ Account created, signed in as %s\n", displayName(profile.Email, profile.DisplayName))
	if err != nil {
		ctx.Printf("⚠ %v\n", err)
	}
	return nil
}
