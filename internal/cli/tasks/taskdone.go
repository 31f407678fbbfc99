package tasks

import (
	"errors"
	"fmt"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/tasks"
)

type TaskDoneCmd struct {
	ID string `arg:"" help:"Task ID to complete."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	board, updater, list, err := loadBoard(ctx)
	if err != nil {
		return err
	}

	title := c.ID
	for _, t := range list {
		if t.ID == c.ID {
			title = t.Title
		}
	}

	if err := board.Complete(ctx.Context(), updater, c.ID); err != nil {
		if errors.Is(err, tasks.ErrUnknownTask) {
			return fmt.Errorf("failed to find task with ID %s", c.ID)
		}
		return err
	}

	ctx.Printf("Completed task: %s (ID: %s)\n", title, c.ID)
	if board.AllComplete() {
		ctx.Println("All tasks completed!")
	}
	return nil
}
