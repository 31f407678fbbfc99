package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/kairos/internal/api"
	"github.com/julianstephens/kairos/internal/cache"
	"github.com/julianstephens/kairos/internal/cli"
	"github.com/julianstephens/kairos/internal/keyring"
	"github.com/julianstephens/kairos/internal/storage"
	"github.com/julianstephens/kairos/internal/validation"
)

type DoctorCmd struct {
	Timeout time.Duration `help:"Timeout for each network check." default:"5s"`
}

// checkResult is the outcome of a single diagnostic
type checkResult int

const (
	checkOK checkResult = iota
	checkFail
	checkWarn
	checkSkip
)

type diagnostics struct {
	ctx      *cli.Context
	hasError bool
}

func (d *diagnostics) report(name string, result checkResult, detail any) {
	switch result {
	case checkOK:
		d.ctx.Printf("✓ %s: OK\n", name)
	case checkFail:
		d.ctx.Printf("❌ %s: FAIL\n", name)
		d.ctx.Printf("   Error: %v\n", detail)
		d.hasError = true
	case checkWarn:
		d.ctx.Printf("⚠ %s: WARNING\n", name)
		d.ctx.Printf("   %v\n", detail)
	case checkSkip:
		d.ctx.Printf("⊘ %s: SKIPPED (%v)\n", name, detail)
	}
}

// run reports check as a failure when it returns an error
func (d *diagnostics) run(name string, check func() error) bool {
	if err := check(); err != nil {
		d.report(name, checkFail, err)
		return false
	}
	d.report(name, checkOK, nil)
	return true
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	d := &diagnostics{ctx: ctx}

	// Check 1: DB reachable
	dbReachable := d.run("Database reachable", func() error { return checkDBReachable(ctx) })

	// Check 2-3: Schema version and migrations
	if dbReachable {
		d.run("Schema version", func() error { return checkSchemaVersion(ctx) })
		d.run("Migrations complete", func() error { return checkMigrationsComplete(ctx) })
	} else {
		d.report("Schema version", checkSkip, "database not reachable")
		d.report("Migrations complete", checkSkip, "database not reachable")
	}

	// Check 4: Configuration
	d.run("Configuration", ctx.Config.Validate)

	// Check 5: Clock/timezone sanity
	d.run("Clock/timezone", func() error { return checkClockTimezone(ctx) })

	// Check 6: OS keyring (warning only)
	if keyring.IsAvailable() {
		d.report("OS keyring", checkOK, nil)
	} else {
		d.report("OS keyring", checkWarn, "keyring unavailable, refresh tokens are kept in the local database")
	}

	// Check 7: Backend reachable
	backendReachable := d.run("Backend reachable", func() error { return cmd.checkBackend(ctx) })

	// Check 8: Session (warning only)
	signedIn := false
	if dbReachable {
		if uid, err := ctx.UID(); err != nil {
			d.report("Session", checkWarn, err)
		} else {
			d.report("Session", checkOK, nil)
			ctx.Printf("   Signed in as %s\n", uid)
			signedIn = true
		}
	} else {
		d.report("Session", checkSkip, "database not reachable")
	}

	// Check 9: Response cache (warning only)
	if ctx.Config.RedisAddr == "" {
		d.report("Response cache", checkSkip, "redis_addr not set")
	} else if err := cmd.checkCache(ctx); err != nil {
		d.report("Response cache", checkWarn, err)
	} else {
		d.report("Response cache", checkOK, nil)
	}

	// Check 10: Remote data validation
	switch {
	case !backendReachable:
		d.report("Data validation", checkSkip, "backend not reachable")
	case !signedIn:
		d.report("Data validation", checkSkip, "not signed in")
	default:
		result, err := cmd.checkData(ctx)
		switch {
		case err != nil:
			d.report("Data validation", checkFail, err)
		case result.HasConflicts():
			d.report("Data validation", checkWarn, fmt.Sprintf("found %d conflict(s)", len(result.Conflicts)))
			ctx.Printf("%s", result.FormatReport())
		default:
			d.report("Data validation", checkOK, nil)
		}
	}

	ctx.Println()
	if d.hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		if ctx.StoreErr != nil {
			return fmt.Errorf("storage is not configured: %w", ctx.StoreErr)
		}
		return errors.New("storage is not configured")
	}
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.Names(); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (int, int, bool, error) {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return 0, 0, false, nil
	}
	current, latest, err := migrator.SchemaVersion()
	return current, latest, true, err
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok {
		return nil
	}
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, ok, err := schemaVersions(ctx)
	if !ok {
		return nil
	}
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'kairos migrate')", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Today()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Config.Location() == time.Local && ctx.Config.Timezone != "Local" && ctx.Config.Timezone != "" {
		return fmt.Errorf("timezone %q could not be loaded, falling back to the system timezone", ctx.Config.Timezone)
	}
	return nil
}

func (cmd *DoctorCmd) checkBackend(ctx *cli.Context) error {
	client, err := api.New(ctx.Config.BackendURL, api.WithTimeout(cmd.timeout()))
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx.Context(), cmd.timeout())
	defer cancel()
	return client.Ping(pingCtx)
}

func (cmd *DoctorCmd) checkCache(ctx *cli.Context) error {
	rc, err := cache.New(ctx.Context(), cache.Options{
		Addr:     ctx.Config.RedisAddr,
		Password: ctx.Config.RedisPassword,
		DB:       ctx.Config.RedisDB,
	})
	if err != nil {
		return err
	}
	return rc.Close()
}

func (cmd *DoctorCmd) checkData(ctx *cli.Context) (validation.ValidationResult, error) {
	var result validation.ValidationResult

	uid, err := ctx.UID()
	if err != nil {
		return result, err
	}
	client, err := ctx.Client()
	if err != nil {
		return result, err
	}

	reqCtx, cancel := context.WithTimeout(ctx.Context(), cmd.timeout())
	defer cancel()

	habits, err := client.ListHabitsByUser(reqCtx, uid)
	if err != nil {
		return result, fmt.Errorf("failed to fetch habits: %w", err)
	}
	slots, err := client.ListSchedulesByUser(reqCtx, uid)
	if err != nil {
		return result, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	v := validation.New()
	result = v.ValidateHabits(habits)
	schedules := v.ValidateSchedules(slots, ctx.Today())
	result.Conflicts = append(result.Conflicts, schedules.Conflicts...)
	return result, nil
}

func (cmd *DoctorCmd) timeout() time.Duration {
	if cmd.Timeout <= 0 {
		return 5 * time.Second
	}
	return cmd.Timeout
}
