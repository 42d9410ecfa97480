package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// ChromemStore is an embedded in-process vector store for local/dev use,
// backed by chromem-go. Records without an embedding are kept in a side map
// so they never participate in similarity search.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection

	mu       sync.RWMutex
	orphaned map[string]Record
}

func NewChromemStore() (*ChromemStore, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("memories", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &ChromemStore{
		db:         db,
		collection: col,
		orphaned:   make(map[string]Record),
	}, nil
}

func (s *ChromemStore) Insert(ctx context.Context, rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if rec.Embedding == nil {
		s.mu.Lock()
		s.orphaned[rec.ID] = rec
		s.mu.Unlock()
		return rec.ID, nil
	}

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Content:   rec.Content,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"user_id":    rec.UserID,
			"importance": strconv.FormatFloat(rec.Importance, 'f', -1, 64),
			"created_at": rec.CreatedAt.Format(time.RFC3339),
			"meta":       string(meta),
		},
	}
	if err := s.collection.AddDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return rec.ID, nil
}

func (s *ChromemStore) Search(ctx context.Context, query SearchQuery) ([]Record, error) {
	if len(query.Embedding) == 0 {
		return nil, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 5
	}

	// chromem rejects nResults larger than the collection size.
	n := limit
	if count := s.collection.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	var where map[string]string
	if query.UserID != "" {
		where = map[string]string{"user_id": query.UserID}
	}

	results, err := s.collection.QueryEmbedding(ctx, query.Embedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, res := range results {
		if float64(res.Similarity) < query.Threshold {
			continue
		}
		rec, err := recordFromResult(res)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ChromemStore) Close() error { return nil }

func recordFromResult(res chromem.Result) (Record, error) {
	rec := Record{
		ID:        res.ID,
		UserID:    res.Metadata["user_id"],
		Content:   res.Content,
		Embedding: res.Embedding,
	}
	if raw := res.Metadata["meta"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &rec.Metadata); err != nil {
			return Record{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if raw := res.Metadata["importance"]; raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Record{}, fmt.Errorf("parse importance: %w", err)
		}
		rec.Importance = f
	}
	if raw := res.Metadata["created_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Record{}, fmt.Errorf("parse created_at: %w", err)
		}
		rec.CreatedAt = t
	}
	return rec, nil
}
