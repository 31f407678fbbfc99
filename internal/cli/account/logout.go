package account

import (
	"github.com/julianstephens/kairos/internal/cli"
)

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	stores, err := ctx.Session()
	if err != nil {
		return err
	}
	if !stores.Auth.Authenticated() {
		ctx.Println("Not signed in.")
		return nil
	}

	m, err := ctx.Auth()
	if err != nil {
		return err
	}
	if err := m.Logout(); err != nil {
		return err
	}
	ctx.PurgeCache(ctx.Context())

	ctx.Println("✓ Signed out")
	return nil
}
