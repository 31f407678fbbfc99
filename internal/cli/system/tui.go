package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/lock"
	"github.com/julianstephens/kairos/internal/logger"
	"github.com/julianstephens/kairos/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	l, err := lock.Acquire(ctx.Config.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release TUI lock", "error", err)
		}
	}()

	manager, err := ctx.Auth()
	if err != nil {
		return err
	}
	client, err := ctx.Client()
	if err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Context:    ctx.Context(),
		Backend:    client,
		Session:    manager,
		Location:   ctx.Config.Location(),
		Now:        ctx.Now,
		OnMutation: func(c context.Context) { ctx.PurgeCache(c) },
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
