package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lherron/dedupe/internal/apply"
	"github.com/lherron/dedupe/internal/company"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/resolve"
	"github.com/lherron/dedupe/internal/table"
)

// setupTestStore opens a temporary artifact store.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPlan(t *testing.T) ([]domain.CompanyRecord, *resolve.Plan) {
	t.Helper()
	tbl := &table.Table{
		Header: []string{"id", "name", "taille"},
		Rows: [][]string{
			{"1", "Acme Corp", ""},
			{"2", "ACME CORP.", "500"},
			{"3", "Other Inc", ""},
		},
	}
	records, err := company.FromTable("companies.csv", tbl, company.DefaultOptions())
	if err != nil {
		t.Fatalf("FromTable() failed: %v", err)
	}
	_, plan, err := resolve.BuildMapping(context.Background(), records, resolve.Options{Threshold: 0.85})
	if err != nil {
		t.Fatalf("BuildMapping() failed: %v", err)
	}
	return records, plan
}

func TestRecordRun(t *testing.T) {
	s := setupTestStore(t)
	records, plan := testPlan(t)

	targets := []apply.Result{
		{Path: "F_avis.csv", OutputPath: "F_avis_updated.csv", Rows: 4, Replaced: 2},
		{Path: "F_offres.csv", Skipped: "file not found"},
	}
	runID, err := s.RecordRun("apply-mapping", "companies.csv", records, plan, targets)
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	runs, err := s.Runs(10)
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.ID != runID || r.Command != "apply-mapping" || r.Records != 3 || r.Pairs != 1 ||
		r.Clusters != 1 || r.Removed != 1 || r.Replaced != 2 || r.Threshold != 0.85 {
		t.Errorf("unexpected run: %+v", r)
	}
	if r.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}

	entries, err := s.Mapping(runID)
	if err != nil {
		t.Fatalf("Mapping() failed: %v", err)
	}
	want := resolve.MappingEntry{RemovedID: "1", RemovedName: "Acme Corp", KeptID: "2", KeptName: "ACME CORP."}
	if len(entries) != 1 || entries[0] != want {
		t.Errorf("Mapping() = %+v, want [%+v]", entries, want)
	}

	var skipped string
	if err := s.db.QueryRow("SELECT skipped FROM run_targets WHERE run_id = ? AND path = ?", runID, "F_offres.csv").Scan(&skipped); err != nil {
		t.Fatalf("failed to read target row: %v", err)
	}
	if skipped != "file not found" {
		t.Errorf("unexpected skipped reason %q", skipped)
	}
}

func TestRunsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	records, plan := testPlan(t)

	first, err := s.RecordRun("resolve-entities", "a.csv", records, plan, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.RecordRun("resolve-entities", "b.csv", records, plan, nil)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs(0)
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != second || runs[1].ID != first {
		t.Errorf("unexpected order: %+v", runs)
	}

	limited, err := s.Runs(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d runs", len(limited))
	}
}

func TestMappingUnknownRun(t *testing.T) {
	s := setupTestStore(t)

	entries, err := s.Mapping("does-not-exist")
	if err != nil {
		t.Fatalf("Mapping() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}
