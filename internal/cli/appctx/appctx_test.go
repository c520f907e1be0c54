package appctx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/lherron/dedupe/internal/domain"
)

// testCommand builds a command carrying the flags Bootstrap looks at
func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	for _, v := range []string{"DEDUPE_THRESHOLD", "DEDUPE_WORKERS", "DEDUPE_LOG_LEVEL", "DEDUPE_ARTIFACT_DB"} {
		t.Setenv(v, "")
	}
	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "Config file")
	cmd.Flags().String("log-level", "info", "Log level")
	cmd.Flags().String("id-column", "id", "Id column")
	cmd.Flags().String("name-column", "name", "Name column")
	cmd.Flags().Int("workers", 0, "Workers")
	cmd.Flags().String("artifact-db", "", "Artifact database")
	cmd.Flags().Float64("threshold", 0.85, "Threshold")
	cmd.SetErr(&bytes.Buffer{})
	return cmd
}

func TestBootstrap_Defaults(t *testing.T) {
	cmd := testCommand(t)

	app, err := Bootstrap(cmd, DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Config == nil || app.Logger == nil {
		t.Fatal("Config and Logger should be set")
	}
	if app.Store != nil {
		t.Error("Store should be nil without an artifact database")
	}
	if app.Config.Threshold != 0.85 {
		t.Errorf("Threshold = %v, want 0.85", app.Config.Threshold)
	}
}

func TestBootstrap_FlagOverrides(t *testing.T) {
	cmd := testCommand(t)
	if err := cmd.ParseFlags([]string{"--threshold", "0.9", "--workers", "3", "--name-column", "raison_sociale"}); err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(cmd, DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Config.Threshold != 0.9 {
		t.Errorf("Threshold = %v, want 0.9", app.Config.Threshold)
	}
	if app.Config.Workers != 3 {
		t.Errorf("Workers = %d, want 3", app.Config.Workers)
	}
	if app.Config.NameColumn != "raison_sociale" {
		t.Errorf("NameColumn = %q", app.Config.NameColumn)
	}
}

func TestBootstrap_FlagsWinOverEnv(t *testing.T) {
	cmd := testCommand(t)
	t.Setenv("DEDUPE_THRESHOLD", "0.5")
	if err := cmd.ParseFlags([]string{"--threshold", "0.7"}); err != nil {
		t.Fatal(err)
	}

	app, err := Bootstrap(cmd, DefaultOptions())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Config.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", app.Config.Threshold)
	}
}

func TestBootstrap_InvalidThreshold(t *testing.T) {
	cmd := testCommand(t)
	if err := cmd.ParseFlags([]string{"--threshold", "-0.1"}); err != nil {
		t.Fatal(err)
	}

	_, err := Bootstrap(cmd, DefaultOptions())
	if !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestBootstrap_StoreRequired(t *testing.T) {
	cmd := testCommand(t)

	_, err := Bootstrap(cmd, WithStore())
	if !errors.Is(err, domain.ErrConfig) {
		t.Fatalf("expected config error without --artifact-db, got %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	if err := cmd.ParseFlags([]string{"--artifact-db", dbPath}); err != nil {
		t.Fatal(err)
	}
	app, err := Bootstrap(cmd, WithStore())
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	defer app.Close()

	if app.Store == nil {
		t.Fatal("Store should be open")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("artifact database not created: %v", err)
	}

	// Close is safe to call twice
	app.Close()
	app.Close()
}

func TestContext(t *testing.T) {
	if Context(&cobra.Command{}) == nil {
		t.Fatal("Context should never be nil")
	}
}
