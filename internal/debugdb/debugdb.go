// Package debugdb stores the debug names of canonicalization runs in SQLite so
// symbols printed by a run can be decoded later.
package debugdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/funvibe/canscope/internal/symbols"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS modules (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	module_id INTEGER NOT NULL,
	name      TEXT NOT NULL,
	PRIMARY KEY (run_id, module_id)
);
CREATE TABLE IF NOT EXISTS idents (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	module_id INTEGER NOT NULL,
	ident_id  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	PRIMARY KEY (run_id, module_id, ident_id)
);
`

type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// SaveRun stores every registered module of names under a new run id.
func (d *DB) SaveRun(ctx context.Context, names *symbols.DebugNames) (uuid.UUID, error) {
	runID := uuid.New()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at) VALUES (?, ?)`,
		runID.String(), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return uuid.Nil, fmt.Errorf("saving run: %w", err)
	}

	for _, id := range names.Modules() {
		name, ok := names.ModuleName(id)
		if !ok {
			name = fmt.Sprintf("%d", id)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO modules (run_id, module_id, name) VALUES (?, ?, ?)`,
			runID.String(), int64(id), name); err != nil {
			return uuid.Nil, fmt.Errorf("saving module %s: %w", name, err)
		}
		for i, ident := range names.Idents(id) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO idents (run_id, module_id, ident_id, name) VALUES (?, ?, ?, ?)`,
				runID.String(), int64(id), i, string(ident)); err != nil {
				return uuid.Nil, fmt.Errorf("saving %s.%s: %w", name, ident, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	return runID, nil
}

// ErrRunNotFound is returned by LoadRun for an unknown run id.
var ErrRunNotFound = errors.New("debugdb: run not found")

// LoadRun rebuilds the debug names saved under runID.
func (d *DB) LoadRun(ctx context.Context, runID uuid.UUID) (*symbols.DebugNames, error) {
	var exists int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID.String()).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	modules, err := d.loadModules(ctx, runID)
	if err != nil {
		return nil, err
	}

	names := symbols.NewDebugNames()
	for _, m := range modules {
		names.RegisterModule(m.id, m.name)
	}
	for _, m := range modules {
		id := m.id
		idents, err := d.loadIdents(ctx, runID, id)
		if err != nil {
			return nil, err
		}
		// builtins come pre-registered with the same names
		names.RegisterNames(id, idents)
	}
	return names, nil
}

type storedModule struct {
	id   symbols.ModuleID
	name string
}

func (d *DB) loadModules(ctx context.Context, runID uuid.UUID) ([]storedModule, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT module_id, name FROM modules WHERE run_id = ? ORDER BY module_id`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedModule
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, storedModule{id: symbols.ModuleID(id), name: name})
	}
	return out, rows.Err()
}

func (d *DB) loadIdents(ctx context.Context, runID uuid.UUID, module symbols.ModuleID) ([]symbols.Ident, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name FROM idents WHERE run_id = ? AND module_id = ? ORDER BY ident_id`,
		runID.String(), int64(module))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []symbols.Ident
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, symbols.Ident(name))
	}
	return out, rows.Err()
}

// Runs lists the stored run ids, oldest first.
func (d *DB) Runs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("run id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
