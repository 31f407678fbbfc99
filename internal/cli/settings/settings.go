package settings

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/config"
	"github.com/julianstephens/kairos/internal/constants"
)

type SettingsCmd struct {
	List bool              `help:"List current settings."`
	Get  string            `help:"Print a single setting."`
	Set  map[string]string `help:"Update settings, as key=value pairs." mapsep:","`
	Path bool              `help:"Print the path of the configuration file."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	switch {
	case c.Path:
		ctx.Println(filepath.Join(ctx.Config.Dir, constants.ConfigFileName))
		return nil

	case c.Get != "":
		value, err := ctx.Config.Get(c.Get)
		if err != nil {
			return err
		}
		ctx.Println(value)
		return nil

	case len(c.Set) > 0:
		cfg := ctx.Config
		keys := make([]string, 0, len(c.Set))
		for k := range c.Set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := cfg.Set(k, c.Set[k]); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("settings not saved: %w", err)
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Config = cfg
		ctx.Println("Settings updated successfully.")
		return nil

	case c.List:
		ctx.Println("Current Settings:")
		for _, k := range config.Keys() {
			value, _ := ctx.Config.Get(k)
			if k == constants.SettingAuthAPIKey && value != "" {
				value = "****"
			}
			ctx.Printf("  %-16s %s\n", k+":", value)
		}
		return nil
	}

	ctx.Println("No changes specified. Use --list to view settings or --set key=value to update them.")
	return nil
}
