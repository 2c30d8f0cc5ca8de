package loader

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treetable/pkg/model"
)

// MenusTable is the table read from SQLite sources.
const MenusTable = "menus"

const selectMenus = `SELECT id, COALESCE(parent_id, ''), title, COALESCE(kind, ''),
	COALESCE(route, ''), COALESCE(icon, ''), COALESCE(position, 0)
	FROM ` + MenusTable + ` ORDER BY position, id`

// CreateMenusTable is the schema expected in SQLite sources.
const CreateMenusTable = `CREATE TABLE IF NOT EXISTS ` + MenusTable + ` (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	title     TEXT NOT NULL,
	kind      TEXT,
	route     TEXT,
	icon      TEXT,
	position  INTEGER DEFAULT 0
)`

func loadSQLite(ctx context.Context, path string) (*Result, error) {
	// sql.Open would silently create a missing database
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectMenus)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", MenusTable, err)
	}
	defer rows.Close()

	res := &Result{}
	for rows.Next() {
		var r model.Record
		var kind string
		if err := rows.Scan(&r.ID, &r.ParentID, &r.Title, &kind, &r.Route, &r.Icon, &r.Position); err != nil {
			return nil, fmt.Errorf("scan %s: %w", MenusTable, err)
		}
		r.Kind = model.Kind(kind)
		res.addRecord(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", MenusTable, err)
	}
	return res, nil
}

// WriteSQLite stores records in a SQLite database, creating the menus table
// when needed. Existing rows with the same id are replaced.
func WriteSQLite(ctx context.Context, path string, records []model.Record) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, CreateMenusTable); err != nil {
		return fmt.Errorf("create %s: %w", MenusTable, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO `+MenusTable+
		` (id, parent_id, title, kind, route, icon, position) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var parent any
		if r.ParentID != "" {
			parent = r.ParentID
		}
		if _, err := stmt.ExecContext(ctx, r.ID, parent, r.Title, string(r.Kind), r.Route, r.Icon, r.Position); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
