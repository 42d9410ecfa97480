package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists memory records in PostgreSQL with pgvector.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string, embeddingDim int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool, embeddingDim); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB NOT NULL DEFAULT '{}',
			importance DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, embeddingDim),
		`CREATE INDEX IF NOT EXISTS idx_memories_user_created ON memories (user_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	// pgx has no native codec for the vector type; pass a literal and cast.
	var embedding *string
	if rec.Embedding != nil {
		lit := vectorLiteral(rec.Embedding)
		embedding = &lit
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO memories (id, user_id, content, embedding, metadata, importance, created_at)
		 VALUES ($1, $2, $3, $4::vector, $5, $6, $7)`,
		rec.ID,
		rec.UserID,
		rec.Content,
		embedding,
		meta,
		rec.Importance,
		rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return rec.ID, nil
}

func (s *PostgresStore) Search(ctx context.Context, query SearchQuery) ([]Record, error) {
	if len(query.Embedding) == 0 {
		return nil, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, content, metadata, importance, created_at
		 FROM memories
		 WHERE embedding IS NOT NULL
		   AND ($2 = '' OR user_id = $2)
		   AND 1 - (embedding <=> $1::vector) >= $3
		 ORDER BY embedding <=> $1::vector
		 LIMIT $4`,
		vectorLiteral(query.Embedding),
		query.UserID,
		query.Threshold,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			r    Record
			meta []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Content, &meta, &r.Importance, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory row: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &r.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory rows: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func vectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
