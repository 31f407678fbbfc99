package habits

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.UID()
	if err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}
	habits, err := client.ListHabitsByUser(ctx.Context(), uid)
	if err != nil {
		return err
	}

	result := validation.New().ValidateHabits(habits)
	ctx.Println(result.FormatReport())
	return nil
}
