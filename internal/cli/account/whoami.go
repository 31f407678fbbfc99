package account

import (
	"github.com/julianstephens/kairos/internal/auth"
	"github.com/julianstephens/kairos/internal/cli"
)

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	stores, err := ctx.Session()
	if err != nil {
		return err
	}
	if !stores.Auth.Authenticated() {
		return auth.ErrNotSignedIn
	}

	state := stores.Auth.State()
	ctx.Printf("UID:   %s\n", state.UID)
	ctx.Printf("Email: %s\n", state.Email)
	if p := stores.User.Profile(); p != nil && p.DisplayName != "" {
		ctx.Printf("Name:  %s\n", p.DisplayName)
	}
	return nil
}
