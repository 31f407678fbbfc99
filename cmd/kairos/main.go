package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/cli/account"
	"github.com/julianstephens/kairos/internal/cli/finance"
	"github.com/julianstephens/kairos/internal/cli/habits"
	"github.com/julianstephens/kairos/internal/cli/schedules"
	"github.com/julianstephens/kairos/internal/cli/settings"
	"github.com/julianstephens/kairos/internal/cli/system"
	"github.com/julianstephens/kairos/internal/cli/tasks"
	"github.com/julianstephens/kairos/internal/config"
	"github.com/julianstephens/kairos/internal/constants"
	kerrors "github.com/julianstephens/kairos/internal/errors"
	"github.com/julianstephens/kairos/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml, .env and logs." default:"${config_dir}" env:"KAIROS_CONFIG_DIR"`
	Store     string `help:"SQLite path or PostgreSQL connection string for the local session store. Credentials must NOT be embedded in the connection string."`
	Debug     bool   `help:"Log debug output to stderr and the log file."`

	Init     system.InitCmd       `cmd:"" help:"Initialize the local session store."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string, password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability." default:"1"`
	} `cmd:"" help:"Manage credentials kept in the OS keyring."`

	Login  account.LoginCmd  `cmd:"" help:"Sign in to your account."`
	Signup account.SignupCmd `cmd:"" help:"Create an account."`
	Logout account.LogoutCmd `cmd:"" help:"Sign out and clear the local session."`
	Whoami account.WhoamiCmd `cmd:"" help:"Show the signed-in user."`

	Habits struct {
		Today    habits.TodayCmd    `cmd:"" help:"Show today's pending habits." default:"1"`
		Done     habits.DoneCmd     `cmd:"" help:"Check in a habit."`
		List     habits.ListCmd     `cmd:"" help:"List habits."`
		Add      habits.AddCmd      `cmd:"" help:"Add a habit."`
		Delete   habits.DeleteCmd   `cmd:"" help:"Delete a habit."`
		Week     habits.WeekCmd     `cmd:"" help:"Show the week's check-in grid."`
		Validate habits.ValidateCmd `cmd:"" help:"Check habits and check-ins for inconsistencies."`
		Checkins habits.CheckinsCmd `cmd:"" help:"Manage check-ins."`
	} `cmd:"" help:"Track habits."`
	Tasks struct {
		List tasks.TaskListCmd `cmd:"" help:"List tasks." default:"1"`
		Done tasks.TaskDoneCmd `cmd:"" help:"Complete a task."`
	} `cmd:"" help:"Manage tasks."`
	Schedule struct {
		List   schedules.ScheduleListCmd   `cmd:"" help:"Show upcoming schedule slots." default:"1"`
		Add    schedules.ScheduleAddCmd    `cmd:"" help:"Add a schedule slot."`
		Delete schedules.ScheduleDeleteCmd `cmd:"" help:"Delete a schedule slot."`
	} `cmd:"" help:"Manage the daily schedule."`
	Finance finance.FinanceCmd `cmd:"" help:"Show the finance summary."`
}

// commands that open the store themselves, or never need it
var skipLoad = map[string]bool{
	"init":     true,
	"migrate":  true,
	"doctor":   true,
	"settings": true,
	"keyring":  true,
}

// commands that still run when the store cannot be set up, so that a bad
// store setting can be inspected and repaired
var storeOptional = map[string]bool{
	"doctor":   true,
	"settings": true,
	"keyring":  true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habits, tasks, schedule and finances from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, kerrors.Format(err))
		os.Exit(1)
	}
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:       cfg.Debug,
		ConfigDir:   cfg.Dir,
		Level:       cfg.LogLevel,
		Interactive: command == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	store, storeErr := cli.NewStore(cfg)
	if storeErr != nil {
		if !storeOptional[command] {
			kerrors.Fatal(storeErr)
		}
		logger.Warn("Storage unavailable", "error", storeErr)
	}

	// Load the store before running the command, except for commands that
	// handle their own loading
	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			kerrors.Fatal(err)
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	appCtx := cli.NewContext(cfg, store)
	appCtx.StoreErr = storeErr
	appCtx.SetContext(runCtx)
	err = kctx.Run(appCtx)
	stop()
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close resources", "error", cerr)
	}
	if err != nil {
		kerrors.Fatal(err)
	}
}
