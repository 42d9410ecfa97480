package memory

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/adambeloucif/abel/internal/llm"
	"github.com/adambeloucif/abel/internal/policy"
)

const contextHeader = "Contexte pertinent des conversations précédentes:"

// ServiceConfig tunes retrieval behavior.
type ServiceConfig struct {
	// Threshold is the minimum cosine similarity for a record to be relevant.
	Threshold float64
	// SearchLimit caps the number of records returned by Search.
	SearchLimit int
	// ContextLimit caps the number of records injected into chat context.
	ContextLimit int
	// EmbedTimeout bounds each embedding call; expiry counts as a gateway
	// failure.
	EmbedTimeout time.Duration
}

// Service runs the embed, filter and format pipeline over a Store. Every
// failure mode (embedding failure, store failure, empty result) degrades to
// "no context"; no error from a collaborator crosses this boundary.
type Service struct {
	store    Store
	embedder llm.Embedder
	cfg      ServiceConfig
}

func NewService(store Store, embedder llm.Embedder, cfg ServiceConfig) *Service {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.7
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.ContextLimit <= 0 {
		cfg.ContextLimit = 3
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 10 * time.Second
	}
	return &Service{store: store, embedder: embedder, cfg: cfg}
}

// Save stores a new memory with its embedding. When embedding fails the
// record is stored anyway with a nil embedding, preserving the raw text.
// Returns the generated identifier, or "" on storage failure.
func (s *Service) Save(ctx context.Context, userID, content string, metadata map[string]any, importance float64) string {
	// Memories outlive the session; mask PII before it is persisted.
	content, redacted := policy.RedactPII(content)
	if redacted {
		log.Printf("memory: redacted PII before storing")
	}

	embedding := s.embed(ctx, content)
	if embedding == nil {
		log.Printf("memory: no embedding generated, storing without vector")
	}

	id, err := s.store.Insert(ctx, Record{
		UserID:     userID,
		Content:    content,
		Embedding:  embedding,
		Metadata:   metadata,
		Importance: importance,
	})
	if err != nil {
		log.Printf("memory: store failed: %v", err)
		return ""
	}
	log.Printf("memory: stored record %s for user %s", id, userID)
	return id
}

// Search returns records similar to the query, scoped to userID when
// non-empty. Embedding failure or store failure yields an empty result.
func (s *Service) Search(ctx context.Context, query, userID string) []Record {
	embedding := s.embed(ctx, query)
	if embedding == nil {
		return nil
	}

	records, err := s.store.Search(ctx, SearchQuery{
		Embedding: embedding,
		UserID:    userID,
		Threshold: s.cfg.Threshold,
		Limit:     s.cfg.SearchLimit,
	})
	if err != nil {
		log.Printf("memory: search failed: %v", err)
		return nil
	}
	return records
}

// ContextFor retrieves relevant memories for a chat query and formats them
// as a context block. Returns "" when nothing relevant is found, so callers
// can omit the context section entirely.
func (s *Service) ContextFor(ctx context.Context, query, userID string) string {
	embedding := s.embed(ctx, query)
	if embedding == nil {
		return ""
	}

	records, err := s.store.Search(ctx, SearchQuery{
		Embedding: embedding,
		UserID:    userID,
		Threshold: s.cfg.Threshold,
		Limit:     s.cfg.ContextLimit,
	})
	if err != nil {
		log.Printf("memory: context search failed: %v", err)
		return ""
	}
	if len(records) == 0 {
		return ""
	}
	if len(records) > s.cfg.ContextLimit {
		records = records[:s.cfg.ContextLimit]
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	for _, rec := range records {
		sb.WriteString("\n- ")
		sb.WriteString(rec.Content)
	}
	return sb.String()
}

func (s *Service) embed(ctx context.Context, text string) []float32 {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("memory: embedding generation failed: %v", err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}
