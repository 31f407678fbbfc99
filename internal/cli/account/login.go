package account

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/validation"
)

type LoginCmd struct {
	Email    string `short:"e" help:"Account email. Prompted for when omitted."`
	Password string `help:"Account password. Prompted for when omitted." env:"KAIROS_PASSWORD"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	creds := validation.Credentials{Email: c.Email, Password: c.Password}
	if creds.Email == "" || creds.Password == "" {
		if err := promptCredentials(validation.SignIn, &creds); err != nil {
			return err
		}
	}

	m, err := ctx.Auth()
	if err != nil {
		return err
	}
	profile, err := m.Login(ctx.Context(), creds)
	if err != nil {
		return err
	}
	// Cached responses may belong to a previous user
	ctx.PurgeCache(ctx.Context())

	ctx.Printf("✓ Signed in as %s\n", displayName(profile.Email, profile.DisplayName))
	return nil
}
