// Package store persists assembled indexes to SQLite. Saving replaces the
// whole snapshot; loading reproduces symbol records field-for-field.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quarry-dev/quarry/internal/export"
	"github.com/quarry-dev/quarry/internal/lang"
	"github.com/quarry-dev/quarry/internal/symbol"
)

// Store owns one SQLite database holding a single index snapshot.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const (
	createFilesTable = `
	CREATE TABLE IF NOT EXISTS files (
		path            TEXT PRIMARY KEY,
		language        TEXT NOT NULL,
		parse_succeeded INTEGER NOT NULL
	)`

	createSymbolsTable = `
	CREATE TABLE IF NOT EXISTS symbols (
		file_path      TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
		ordinal        INTEGER NOT NULL,
		id             TEXT NOT NULL,
		kind           TEXT NOT NULL,
		name           TEXT NOT NULL,
		qualified_path TEXT NOT NULL,
		start_line     INTEGER NOT NULL,
		start_col      INTEGER NOT NULL,
		end_line       INTEGER NOT NULL,
		end_col        INTEGER NOT NULL,
		documentation  TEXT NOT NULL DEFAULT '',
		modifiers      TEXT NOT NULL DEFAULT '[]',
		parent_id      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (file_path, ordinal)
	)`

	createDiagnosticsTable = `
	CREATE TABLE IF NOT EXISTS diagnostics (
		seq       INTEGER PRIMARY KEY AUTOINCREMENT,
		scope     TEXT NOT NULL,
		code      TEXT NOT NULL,
		file_path TEXT NOT NULL,
		line      INTEGER NOT NULL,
		col       INTEGER NOT NULL,
		severity  TEXT NOT NULL,
		message   TEXT NOT NULL
	)`

	createMetaTable = `
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
)

// scope values for the diagnostics table: file rows rebuild
// FileRecord.ParseErrors, run rows rebuild the run's diagnostics channel.
const (
	scopeFile = "file"
	scopeRun  = "run"
)

func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"diagnostics", createDiagnosticsTable},
		{"meta", createMetaTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", table.name, err)
		}
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path)`); err != nil {
		return fmt.Errorf("create symbols index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot with doc. The write is one transaction:
// either the whole new snapshot lands or the old one stays.
func (s *Store) Save(doc *export.Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"symbols", "diagnostics", "files", "meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := sq.Insert("meta").Columns("key", "value").
		Values("run_id", doc.RunID).
		RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	for path, rec := range doc.Index.Files {
		if err := writeFileRecord(tx, path, rec); err != nil {
			return err
		}
	}

	for _, d := range doc.Diagnostics {
		if err := writeDiagnostic(tx, scopeRun, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func writeFileRecord(tx *sql.Tx, path string, rec *symbol.FileRecord) error {
	if _, err := sq.Insert("files").
		Columns("path", "language", "parse_succeeded").
		Values(path, string(rec.Language), rec.ParseSucceeded).
		RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}

	for i := range rec.Symbols {
		sym := &rec.Symbols[i]
		qp, err := json.Marshal(sym.QualifiedPath)
		if err != nil {
			return fmt.Errorf("marshal qualified path for %s: %w", sym.Name, err)
		}
		mods, err := json.Marshal(sym.Modifiers)
		if err != nil {
			return fmt.Errorf("marshal modifiers for %s: %w", sym.Name, err)
		}
		if _, err := sq.Insert("symbols").
			Columns("file_path", "ordinal", "id", "kind", "name", "qualified_path",
				"start_line", "start_col", "end_line", "end_col",
				"documentation", "modifiers", "parent_id").
			Values(path, i, sym.ID, string(sym.Kind), sym.Name, string(qp),
				sym.Span.StartLine, sym.Span.StartCol, sym.Span.EndLine, sym.Span.EndCol,
				sym.Documentation, string(mods), sym.ParentID).
			RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("write symbol %s in %s: %w", sym.Name, path, err)
		}
	}

	for _, d := range rec.ParseErrors {
		if err := writeDiagnostic(tx, scopeFile, d); err != nil {
			return err
		}
	}
	return nil
}

func writeDiagnostic(tx *sql.Tx, scope string, d symbol.Diagnostic) error {
	if _, err := sq.Insert("diagnostics").
		Columns("scope", "code", "file_path", "line", "col", "severity", "message").
		Values(scope, d.Code, d.Path, d.Line, d.Col, string(d.Severity), d.Message).
		RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("write diagnostic for %s: %w", d.Path, err)
	}
	return nil
}

// Load reconstructs the stored snapshot. The qualified-path map is rebuilt
// from the symbols, in the same order the assembler uses, so the loaded
// index matches the saved one.
func (s *Store) Load() (*export.Document, error) {
	doc := &export.Document{Index: symbol.NewIndex()}

	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'run_id'`).Scan(&doc.RunID); err != nil {
		if err == sql.ErrNoRows {
			return doc, nil // empty store
		}
		return nil, fmt.Errorf("read meta: %w", err)
	}

	if err := s.loadFiles(doc.Index); err != nil {
		return nil, err
	}
	if err := s.loadSymbols(doc.Index); err != nil {
		return nil, err
	}
	if err := s.loadDiagnostics(doc); err != nil {
		return nil, err
	}

	doc.Stats = doc.Index.ComputeStats()
	return doc, nil
}

func (s *Store) loadFiles(idx *symbol.Index) error {
	rows, err := sq.Select("path", "language", "parse_succeeded").
		From("files").OrderBy("path").
		RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("read files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, language string
		var ok bool
		if err := rows.Scan(&path, &language, &ok); err != nil {
			return fmt.Errorf("scan file row: %w", err)
		}
		idx.Files[path] = &symbol.FileRecord{
			Path:           path,
			Language:       lang.Language(language),
			ParseSucceeded: ok,
		}
	}
	return rows.Err()
}

func (s *Store) loadSymbols(idx *symbol.Index) error {
	rows, err := sq.Select("file_path", "id", "kind", "name", "qualified_path",
		"start_line", "start_col", "end_line", "end_col",
		"documentation", "modifiers", "parent_id").
		From("symbols").OrderBy("file_path", "ordinal").
		RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("read symbols: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, qp, mods string
		var sym symbol.Symbol
		var kind string
		if err := rows.Scan(&path, &sym.ID, &kind, &sym.Name, &qp,
			&sym.Span.StartLine, &sym.Span.StartCol, &sym.Span.EndLine, &sym.Span.EndCol,
			&sym.Documentation, &mods, &sym.ParentID); err != nil {
			return fmt.Errorf("scan symbol row: %w", err)
		}
		sym.Kind = symbol.Kind(kind)
		if err := json.Unmarshal([]byte(qp), &sym.QualifiedPath); err != nil {
			return fmt.Errorf("unmarshal qualified path for %s: %w", sym.Name, err)
		}
		if err := json.Unmarshal([]byte(mods), &sym.Modifiers); err != nil {
			return fmt.Errorf("unmarshal modifiers for %s: %w", sym.Name, err)
		}

		rec := idx.Files[path]
		if rec == nil {
			return fmt.Errorf("symbol %s references missing file %s", sym.Name, path)
		}
		rec.Symbols = append(rec.Symbols, sym)
		key := symbol.PathKey(sym.QualifiedPath)
		idx.Paths[key] = append(idx.Paths[key], symbol.Ref{Path: path, SymbolID: sym.ID})
	}
	return rows.Err()
}

func (s *Store) loadDiagnostics(doc *export.Document) error {
	rows, err := sq.Select("scope", "code", "file_path", "line", "col", "severity", "message").
		From("diagnostics").OrderBy("seq").
		RunWith(s.db).Query()
	if err != nil {
		return fmt.Errorf("read diagnostics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var scope, severity string
		var d symbol.Diagnostic
		if err := rows.Scan(&scope, &d.Code, &d.Path, &d.Line, &d.Col, &severity, &d.Message); err != nil {
			return fmt.Errorf("scan diagnostic row: %w", err)
		}
		d.Severity = symbol.Severity(severity)
		switch scope {
		case scopeFile:
			if rec := doc.Index.Files[d.Path]; rec != nil {
				rec.ParseErrors = append(rec.ParseErrors, d)
			}
		case scopeRun:
			doc.Diagnostics = append(doc.Diagnostics, d)
		}
	}
	return rows.Err()
}
