package export

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/fixboard/pkg/dashboard"
)

// Schema version for the snapshot database.
const SchemaVersion = 1

// SaveSnapshot writes the rendered view model to a SQLite database at path:
// one row per table row, one row per chart bar, plus a meta table. The
// snapshot is a one-way export for downstream tooling; the pipeline never
// reads it back.
func SaveSnapshot(vm *dashboard.ViewModel, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open snapshot database: %w", err)
	}
	defer db.Close()

	if err := createSnapshotSchema(db); err != nil {
		return err
	}
	if err := insertSections(db, vm); err != nil {
		return err
	}
	return insertMeta(db, vm)
}

func createSnapshotSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS issue_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fix_version_group TEXT NOT NULL,
			position INTEGER NOT NULL,
			jira_key TEXT NOT NULL,
			summary TEXT,
			type TEXT,
			status TEXT,
			fix_version TEXT,
			project TEXT,
			cat_scope TEXT,
			it_portal TEXT,
			comments TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS value_counts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fix_version_group TEXT NOT NULL,
			insight TEXT NOT NULL,
			value TEXT NOT NULL,
			count INTEGER NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS kpis (
			fix_version_group TEXT PRIMARY KEY,
			total INTEGER NOT NULL,
			stories INTEGER NOT NULL,
			defects INTEGER NOT NULL,
			epics INTEGER NOT NULL,
			has_type_data INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_group ON issue_rows(fix_version_group)`,
		`CREATE INDEX IF NOT EXISTS idx_counts_group ON value_counts(fix_version_group, insight)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create snapshot schema: %w", err)
		}
	}
	return nil
}

func insertSections(db *sql.DB, vm *dashboard.ViewModel) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	rowStmt, err := tx.Prepare(`INSERT INTO issue_rows
		(fix_version_group, position, jira_key, summary, type, status, fix_version, project, cat_scope, it_portal, comments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare row insert: %w", err)
	}
	defer rowStmt.Close()

	countStmt, err := tx.Prepare(`INSERT INTO value_counts
		(fix_version_group, insight, value, count, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare count insert: %w", err)
	}
	defer countStmt.Close()

	for _, section := range vm.Sections {
		if section.Warning != "" {
			continue
		}
		for i, row := range section.Table {
			if _, err := rowStmt.Exec(section.Version, i+1, row.Key, row.Summary,
				row.Type, row.Status, row.FixVersion, row.Project,
				row.CATScope, row.ITPortal, row.Comments); err != nil {
				return fmt.Errorf("insert row %d for %s: %w", i+1, section.Version, err)
			}
		}
		for _, chart := range section.Charts {
			for i, vc := range chart.Counts {
				if _, err := countStmt.Exec(section.Version, chart.Title, vc.Value, vc.Count, i+1); err != nil {
					return fmt.Errorf("insert count for %s: %w", chart.Title, err)
				}
			}
		}
		hasTypes := 0
		if section.KPI.HasTypeData {
			hasTypes = 1
		}
		if _, err := tx.Exec(`INSERT INTO kpis (fix_version_group, total, stories, defects, epics, has_type_data)
			VALUES (?, ?, ?, ?, ?, ?)`,
			section.Version, section.KPI.Total, section.KPI.Stories,
			section.KPI.Defects, section.KPI.Epics, hasTypes); err != nil {
			return fmt.Errorf("insert kpis for %s: %w", section.Version, err)
		}
	}

	return tx.Commit()
}

func insertMeta(db *sql.DB, vm *dashboard.ViewModel) error {
	meta := map[string]string{
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
		"projects":       fmt.Sprintf("%v", vm.Selection.ProjectKeys),
		"versions":       fmt.Sprintf("%v", vm.Selection.Versions),
	}
	for k, v := range meta {
		if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return nil
}
