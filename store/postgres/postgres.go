package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS favorite_imports (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	folder_count INTEGER NOT NULL,
	item_count   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS favorite_items (
	import_id   TEXT NOT NULL REFERENCES favorite_imports(id) ON DELETE CASCADE,
	folder_pos  INTEGER NOT NULL,
	folder      TEXT NOT NULL,
	item_pos    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL,
	lat         DOUBLE PRECISION NOT NULL,
	lng         DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (import_id, folder_pos, item_pos)
);
`

type repo struct {
	pool *pgxpool.Pool
}

// New connects to dsn and makes sure the history tables exist.
func New(ctx context.Context, dsn string) (history.Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &repo{pool: pool}, nil
}

func (r *repo) Create(ctx context.Context, imp *favorites.Import) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO favorite_imports
			(id, source, started_at, finished_at, folder_count, item_count)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			imp.ID, imp.Source, imp.StartedAt, imp.FinishedAt, len(imp.Folders), imp.ItemCount(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert import: %w", err)
		}

		batch := &pgx.Batch{}

		for fi, f := range imp.Folders {
			for ii, it := range f.Items {
				batch.Queue(`INSERT INTO favorite_items
					(import_id, folder_pos, folder, item_pos, name, description, lat, lng)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					imp.ID, fi, f.Name, ii, it.Name, it.Description, it.LatLng.Lat, it.LatLng.Lng,
				)
			}
		}

		if batch.Len() == 0 {
			return nil
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert items: %w", err)
		}

		return nil
	})
}

func (r *repo) Get(ctx context.Context, id string) (favorites.Import, error) {
	var imp favorites.Import

	err := r.pool.QueryRow(ctx,
		`SELECT id, source, started_at, finished_at FROM favorite_imports WHERE id = $1`, id,
	).Scan(&imp.ID, &imp.Source, &imp.StartedAt, &imp.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return imp, history.ErrNotFound
	}

	if err != nil {
		return imp, err
	}

	rows, err := r.pool.Query(ctx, `SELECT folder_pos, folder, name, description, lat, lng
		FROM favorite_items WHERE import_id = $1 ORDER BY folder_pos, item_pos`, id)
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
		FROM favorite_imports ORDER BY started_at DESC`

	var args []any
	if params.Limit > 0 {
		q += " LIMIT $1"
		args = append(args, params.Limit)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (history.Summary, error) {
		var s history.Summary
		err := row.Scan(&s.ID, &s.Source, &s.StartedAt, &s.FinishedAt, &s.Folders, &s.Items)
		return s, err
	})
}

func (r *repo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM favorite_imports WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return history.ErrNotFound
	}

	return nil
}

func (r *repo) Close() error {
	r.pool.Close()
	return nil
}
