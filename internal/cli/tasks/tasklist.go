package tasks

import (
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/models"
	"github.com/julianstephens/kairos/internal/tasks"
)

type TaskListCmd struct {
	All bool `short:"a" help:"List every open task instead of the top ones."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	board, _, list, err := loadBoard(ctx)
	if err != nil {
		return err
	}

	var shown []models.Task
	if c.All {
		var open []models.Task
		for _, t := range list {
			if !t.Completed {
				open = append(open, t)
			}
		}
		shown = tasks.SortByDueDate(tasks.SortByPriority(open))
	} else {
		shown = board.Top()
	}

	if len(shown) == 0 {
		if board.AllComplete() {
			ctx.Println("All tasks completed!")
		} else {
			ctx.Println("No pending tasks.")
		}
		return nil
	}

	ctx.Println("Tasks:")
	for _, t := range shown {
		ctx.Printf("  %-8s %-40s %-18s [%s]\n", priorityLabel(t.Priority), t.Title, due(ctx, t), t.ID)
	}
	return nil
}

// loadBoard fetches the signed-in user's tasks
func loadBoard(ctx *cli.Context) (*tasks.Board, tasks.Updater, []models.Task, error) {
	uid, err := ctx.UID()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := ctx.Client()
	if err != nil {
		return nil, nil, nil, err
	}
	list, err := client.ListTasksByUser(ctx.Context(), uid)
	if err != nil {
		return nil, nil, nil, err
	}

	board := tasks.NewBoard()
	board.Loaded(list, nil)
	return board, client, list, nil
}

func priorityLabel(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "[high]"
	case models.PriorityMedium:
		return "[medium]"
	case models.PriorityLow:
		return "[low]"
	}
	return "[-]"
}

func due(ctx *cli.Context, t models.Task) string {
	if ts := models.ParseTimestamp(t.DueTimestamp); !ts.IsZero() {
		return "due " + ts.In(ctx.Config.Location()).Format("Jan 02 15:04")
	}
	if t.DueDate != "" {
		return "due " + t.DueDate
	}
	return ""
}
