// Package store records resolution runs in a SQLite database so the decided
// mappings can be inspected after the fact. It is an audit trail only: no run
// reads back a previous run's mapping.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lherron/dedupe/internal/apply"
	"github.com/lherron/dedupe/internal/db"
	"github.com/lherron/dedupe/internal/domain"
	"github.com/lherron/dedupe/internal/resolve"
)

// Store is the run artifact store
type Store struct {
	db *db.DB
}

// Run is one recorded run
type Run struct {
	ID            string  `json:"id" yaml:"id"`
	Command       string  `json:"command" yaml:"command"`
	CompaniesPath string  `json:"companies_path" yaml:"companies_path"`
	Threshold     float64 `json:"threshold" yaml:"threshold"`
	Records       int     `json:"records" yaml:"records"`
	Pairs         int     `json:"pairs" yaml:"pairs"`
	Clusters      int     `json:"clusters" yaml:"clusters"`
	Removed       int     `json:"removed" yaml:"removed"`
	Replaced      int     `json:"replaced" yaml:"replaced"`
	CreatedAt     string  `json:"created_at" yaml:"created_at"`
}

// Open opens (creating if needed) the artifact database at path
func Open(path string) (*Store, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, domain.IOError(path, err)
	}
	if _, err := database.Migrate(); err != nil {
		database.Close()
		return nil, domain.IOError(path, err)
	}
	return &Store{db: database}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a run, its mapping and, for apply runs, the per-target
// counts. It returns the generated run id.
func (s *Store) RecordRun(command, companiesPath string, records []domain.CompanyRecord, plan *resolve.Plan, targets []apply.Result) (string, error) {
	runID := uuid.New().String()

	removed := 0
	for _, c := range plan.Clusters {
		removed += len(c.Members) - 1
	}
	replaced := 0
	for _, t := range targets {
		replaced += t.Replaced
	}

	err := s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, command, companies_path, threshold, records, pairs, clusters, removed, replaced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, command, companiesPath, plan.Threshold, plan.Records, len(plan.Pairs), len(plan.Clusters), removed, replaced)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, e := range plan.Entries(records) {
			_, err := tx.Exec(`
				INSERT INTO run_mappings (run_id, removed_id, removed_name, kept_id, kept_name)
				VALUES (?, ?, ?, ?, ?)
			`, runID, e.RemovedID, e.RemovedName, e.KeptID, e.KeptName)
			if err != nil {
				return fmt.Errorf("failed to insert mapping %s: %w", e.RemovedID, err)
			}
		}

		for _, t := range targets {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO run_targets (run_id, path, output_path, rows, replaced, skipped)
				VALUES (?, ?, ?, ?, ?, ?)
			`, runID, t.Path, t.OutputPath, t.Rows, t.Replaced, t.Skipped)
			if err != nil {
				return fmt.Errorf("failed to insert target %s: %w", t.Path, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", domain.IOError(s.db.Path(), err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, command, companies_path, threshold, records, pairs, clusters, removed, replaced, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.CompaniesPath, &r.Threshold, &r.Records,
			&r.Pairs, &r.Clusters, &r.Removed, &r.Replaced, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Mapping returns the mapping entries recorded for a run
func (s *Store) Mapping(runID string) ([]resolve.MappingEntry, error) {
	rows, err := s.db.Query(`
		SELECT removed_id, removed_name, kept_id, kept_name
		FROM run_mappings
		WHERE run_id = ?
		ORDER BY removed_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}
	defer rows.Close()

	var entries []resolve.MappingEntry
	for rows.Next() {
		var e resolve.MappingEntry
		if err := rows.Scan(&e.RemovedID, &e.RemovedName, &e.KeptID, &e.KeptName); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
