package cli

import (
	"path/filepath"
	"testing"

	"github.com/lherron/dedupe/internal/testutil"
)

func TestScore(t *testing.T) {
	cmd, buf := newTestCommand()
	if err := runScore(cmd, []string{"Acme Corp", "ACME CORP."}); err != nil {
		t.Fatalf("runScore failed: %v", err)
	}
	testutil.AssertStringContains(t, buf.String(), `"ACME CORP." -> "acme corp"`)
	testutil.AssertStringContains(t, buf.String(), "score: 1.0000")

	cmd, buf = newTestCommand()
	if err := runScore(cmd, []string{"acme", "acme corp"}); err != nil {
		t.Fatal(err)
	}
	// 2*4/13
	testutil.AssertStringContains(t, buf.String(), "score: 0.6154")
}

func TestRunsListsRecordedRuns(t *testing.T) {
	dir := setupTestEnv(t)
	app := createTestApp(t)
	app.Config.ArtifactDB = filepath.Join(dir, "runs.db")
	defer app.Close()

	resetApplyGlobals()
	applyCompaniesPath = filepath.Join(dir, "companies.csv")
	applyTargets = []string{filepath.Join(dir, "F_avis.csv")}
	cmd, _ := newTestCommand()
	if err := runApplyMapping(app, cmd, nil); err != nil {
		t.Fatalf("runApplyMapping failed: %v", err)
	}

	runsLimit, runsRunID, runsFormat = 20, "", "table"
	cmd, buf := newTestCommand()
	if err := runRuns(app, cmd, nil); err != nil {
		t.Fatalf("runRuns failed: %v", err)
	}
	testutil.AssertStringContains(t, buf.String(), "apply-mapping")

	runs, err := app.Store.Runs(1)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, runs[0].Replaced)

	runsRunID = runs[0].ID
	cmd, buf = newTestCommand()
	if err := runRuns(app, cmd, nil); err != nil {
		t.Fatalf("runRuns --run failed: %v", err)
	}
	testutil.AssertStringContains(t, buf.String(), "ACME CORP.")
	runsRunID = ""
}
