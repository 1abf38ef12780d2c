package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL,
	folder_count INTEGER NOT NULL,
	item_count   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	import_id   TEXT NOT NULL,
	folder_pos  INTEGER NOT NULL,
	folder      TEXT NOT NULL,
	item_pos    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	lat         REAL NOT NULL,
	lng         REAL NOT NULL,
	PRIMARY KEY (import_id, folder_pos, item_pos)
);

CREATE INDEX IF NOT EXISTS imports_started_at ON imports(started_at);
`

type repo struct {
	db *sql.DB
}

// New opens (and creates if needed) the history database at path.
func New(path string) (history.Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// a single connection keeps :memory: databases and writes consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &repo{db: db}, nil
}

func (r *repo) Create(ctx context.Context, imp *favorites.Import) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qImport = `INSERT INTO imports (id, source, started_at, finished_at, folder_count, item_count)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, qImport,
		imp.ID, imp.Source,
		imp.StartedAt.UnixMilli(), imp.FinishedAt.UnixMilli(),
		len(imp.Folders), imp.ItemCount(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import: %w", err)
	}

	const qItem = `INSERT INTO items (import_id, folder_pos, folder, item_pos, name, description, lat, lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, qItem)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for fi, f := range imp.Folders {
		for ii, it := range f.Items {
			_, err := stmt.ExecContext(ctx, imp.ID, fi, f.Name, ii, it.Name, it.Description, it.LatLng.Lat, it.LatLng.Lng)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (r *repo) Get(ctx context.Context, id string) (favorites.Import, error) {
	const q = `SELECT id, source, started_at, finished_at FROM imports WHERE id = ?`

	var (
		imp              favorites.Import
		started, finished int64
	)

	err := r.db.QueryRowContext(ctx, q, id).Scan(&imp.ID, &imp.Source, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return imp, history.ErrNotFound
	}

	if err != nil {
		return imp, err
	}

	imp.StartedAt = time.UnixMilli(started).UTC()
	imp.FinishedAt = time.UnixMilli(finished).UTC()

	const qItems = `SELECT folder_pos, folder, name, description, lat, lng FROM items
		WHERE import_id = ? ORDER BY folder_pos, item_pos`

	rows, err := r.db.QueryContext(ctx, qItems, id)
	if err != nil {
		return imp, err
	}
	defer rows.Close()

	lastPos := -1

	for rows.Next() {
		var (
			pos    int
			folder string
			it     favorites.Item
		)

		if err := rows.Scan(&pos, &folder, &it.Name, &it.Description, &it.LatLng.Lat, &it.LatLng.Lng); err != nil {
			return imp, err
		}

		if pos != lastPos {
			imp.Folders = append(imp.Folders, favorites.Folder{Name: folder})
			lastPos = pos
		}

		last := &imp.Folders[len(imp.Folders)-1]
		last.Items = append(last.Items, it)
	}

	return imp, rows.Err()
}

func (r *repo) Select(ctx context.Context, params history.SelectParams) ([]history.Summary, error) {
	q := `SELECT id, source, started_at, finished_at, folder_count, item_count
		FROM imports ORDER BY started_at DESC`

	var args []any
	if params.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, params.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ans []history.Summary

	for rows.Next() {
		var (
			s                 history.Summary
			started, finished int64
		)

		if err := rows.Scan(&s.ID, &s.Source, &started, &finished, &s.Folders, &s.Items); err != nil {
			return nil, err
		}

		s.StartedAt = time.UnixMilli(started).UTC()
		s.FinishedAt = time.UnixMilli(finished).UTC()
		ans = append(ans, s)
	}

	return ans, rows.Err()
}

func (r *repo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE import_id = ?`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return history.ErrNotFound
	}

	return tx.Commit()
}

func (r *repo) Close() error {
	return r.db.Close()
}
