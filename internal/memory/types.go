package memory

import (
	"context"
	"time"
)

// Record stores a durable unit of long-term conversational knowledge.
// A nil Embedding means the record can never surface in similarity search;
// it exists for audit and manual inspection only.
type Record struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Content    string         `json:"content"`
	Embedding  []float32      `json:"embedding,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Importance float64        `json:"importance"`
	CreatedAt  time.Time      `json:"created_at"`
}

// SearchQuery selects records by vector similarity.
type SearchQuery struct {
	Embedding []float32
	// UserID scopes the search to one owner when non-empty.
	UserID string
	// Threshold is the minimum cosine similarity a record must meet.
	Threshold float64
	Limit     int
}

// Store persists and retrieves memory records.
type Store interface {
	// Insert saves a record and returns its generated identifier.
	Insert(ctx context.Context, rec Record) (string, error)

	// Search returns at most query.Limit records with similarity >= threshold,
	// ordered by descending similarity. Records without an embedding are
	// never returned.
	Search(ctx context.Context, query SearchQuery) ([]Record, error)

	Close() error
}
