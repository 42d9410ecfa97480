package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists the API directory in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithPool wraps an existing pool; the caller keeps ownership of it.
func NewStoreWithPool(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS api_directory (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			category         TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			base_url         TEXT NOT NULL,
			auth_type        TEXT NOT NULL DEFAULT 'none',
			is_active        BOOLEAN NOT NULL DEFAULT TRUE,
			popularity_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (name, category)
		);
		CREATE INDEX IF NOT EXISTS api_directory_category_idx ON api_directory (category);
	`)
	if err != nil {
		return fmt.Errorf("ensure api_directory schema: %w", err)
	}
	return nil
}

// Seed inserts catalog entries, skipping any already present. It reports how
// many new rows were written.
func (s *Store) Seed(ctx context.Context, entries []Entry) (int, error) {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO api_directory (id, name, category, description, base_url, auth_type, is_active, popularity_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name, category) DO NOTHING`,
			uuid.NewString(), e.Name, e.Category, e.Description, e.BaseURL, e.AuthType, e.IsActive, e.PopularityScore,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range entries {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("seed api_directory: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// List returns active entries, optionally restricted to one category,
// ordered by popularity then name.
func (s *Store) List(ctx context.Context, category string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, category, description, base_url, auth_type, is_active, popularity_score
		FROM api_directory
		WHERE is_active AND ($1 = '' OR category = $1)
		ORDER BY popularity_score DESC, name ASC`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("list api_directory: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.Description, &e.BaseURL, &e.AuthType, &e.IsActive, &e.PopularityScore); err != nil {
			return nil, fmt.Errorf("scan api_directory row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api_directory rows: %w", err)
	}
	return out, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
