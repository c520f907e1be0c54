package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lherron/dedupe/internal/table"
)

// WriteFile writes content to a file in a temporary directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// ReadTable parses the CSV table at path
func ReadTable(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := table.Read(path)
	if err != nil {
		t.Fatalf("Failed to read table %s: %v", path, err)
	}
	return tbl
}

// ColumnValues returns every value of the named column of the table at path
func ColumnValues(t *testing.T, path, column string) []string {
	t.Helper()
	tbl := ReadTable(t, path)
	idx := tbl.Column(column)
	if idx < 0 {
		t.Fatalf("Column %q not found in %s", column, path)
	}
	values := make([]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		values[i] = row[idx]
	}
	return values
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}

// AssertStringContains asserts that a string contains a substring
func AssertStringContains(t *testing.T, str, substr string) {
	t.Helper()
	if !strings.Contains(str, substr) {
		t.Fatalf("Expected string to contain %q, got %q", substr, str)
	}
}

// AssertFileMissing asserts that nothing exists at path
func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("Expected %s not to exist", path)
	}
}
