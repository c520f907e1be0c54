// Package table reads and writes comma-separated text tables: UTF-8, one
// header row, every value a string. An empty cell is the empty string.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lherron/dedupe/internal/domain"
)

// Table is an in-memory delimited text table
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column, or -1
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Read loads the table at path.
// A missing file yields a domain.ErrNotFound error, malformed content a domain.ErrSchema error.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NotFound(path, err)
		}
		return nil, domain.IOError(path, err)
	}
	defer f.Close()

	return Parse(path, f)
}

// Parse reads a table from r. name is used in error messages only.
func Parse(name string, r io.Reader) (*Table, error) {
	// A leading UTF-8 BOM is dropped before the header is parsed
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, domain.SchemaErrorf(name, "empty table: no header row")
	}
	if err != nil {
		return nil, domain.SchemaErrorf(name, "failed to read header: %w", err)
	}

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.SchemaErrorf(name, "failed to read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Encode writes the table to w
func (t *Table) Encode(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteAtomic writes the table to path through a temporary file in the same
// directory, renamed into place once fully written. A failed write never
// leaves a partial file at path.
func WriteAtomic(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to create output directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return domain.IOError(path, fmt.Errorf("failed to create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := t.Encode(tmp); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to write table: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to close temp file: %w", err))
	}

	// Keep the permissions of a file being replaced
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to set permissions: %w", err))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return domain.IOError(path, fmt.Errorf("failed to rename temp file: %w", err))
	}
	committed = true
	return nil
}

// SuffixedPath derives "<dir>/<stem><suffix><ext>" from path
func SuffixedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}

// Without returns a copy of the table with the rows at the given indices removed
func (t *Table) Without(removed map[int]bool) *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		if !removed[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
