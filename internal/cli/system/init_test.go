package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/kairos/internal/cli/clitest"
	"github.com/julianstephens/kairos/internal/constants"
)

func TestInitCmd_Success(t *testing.T) {
	env := clitest.New(t)

	cmd := &InitCmd{}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	dbPath := env.Ctx.Store.GetConfigPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	cfgPath := filepath.Join(env.Ctx.Config.Dir, constants.ConfigFileName)
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("config file was not written at %s: %v", cfgPath, err)
	}
	if !strings.Contains(env.Out.String(), "Initialized kairos storage at") {
		t.Errorf("unexpected output: %s", env.Out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	env := clitest.New(t)

	cmd := &InitCmd{}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	env.Out.Reset()
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	if strings.Contains(env.Out.String(), "Wrote default configuration") {
		t.Error("existing config file must not be rewritten")
	}
}

func TestInitCmd_Force(t *testing.T) {
	env := clitest.New(t)

	if err := env.Ctx.Store.Put("authStore", `{"state":{},"version":0}`); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	cmd := &InitCmd{Force: true}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Deleted existing database") {
		t.Errorf("expected deletion notice, got: %s", env.Out.String())
	}

	names, err := env.Ctx.Store.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty store after forced init, got %v", names)
	}
}
