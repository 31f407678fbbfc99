package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/config"
	"github.com/julianstephens/kairos/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing local database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && !config.IsPostgresConnString(ctx.Store.GetConfigPath()) {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file handle
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized kairos storage at: %s\n", displayStore(ctx.Store.GetConfigPath()))

	if ctx.Config.Dir == "" {
		return nil
	}
	cfgPath := filepath.Join(ctx.Config.Dir, constants.ConfigFileName)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(ctx.Config); err != nil {
			return err
		}
		ctx.Printf("Wrote default configuration to: %s\n", cfgPath)
	}
	return nil
}

// displayStore hides credentials when the store is a connection string
func displayStore(path string) string {
	if config.IsPostgresConnString(path) {
		return maskPassword(path)
	}
	return path
}
