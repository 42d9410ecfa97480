package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type stubStore struct {
	mu        sync.Mutex
	records   []Record
	queries   []SearchQuery
	results   []Record
	insertErr error
	searchErr error
}

func (s *stubStore) Insert(ctx context.Context, rec Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.records = append(s.records, rec)
	return fmt.Sprintf("rec-%d", len(s.records)), nil
}

func (s *stubStore) Search(ctx context.Context, q SearchQuery) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func (s *stubStore) Close() error { return nil }

type stubEmbedder struct {
	vec []float32
	err error
}

func (e stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e stubEmbedder) Dimensions() int { return len(e.vec) }

func TestSaveStoresEmbedding(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, stubEmbedder{vec: []float32{1, 0, 0}}, ServiceConfig{})

	id := svc.Save(context.Background(), "u1", "le chat dort", map[string]any{"k": "v"}, 0.5)
	if id == "" {
		t.Fatal("Save() returned empty id")
	}
	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.Embedding == nil {
		t.Error("record embedding is nil, want vector")
	}
	if rec.UserID != "u1" || rec.Content != "le chat dort" || rec.Importance != 0.5 {
		t.Errorf("record = %+v", rec)
	}
}

func TestSaveWithoutEmbeddingStillStores(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, stubEmbedder{err: fmt.Errorf("gateway down")}, ServiceConfig{})

	id := svc.Save(context.Background(), "u1", "le chat dort", nil, 0.5)
	if id == "" {
		t.Fatal("Save() returned empty id, want record stored without vector")
	}
	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if store.records[0].Embedding != nil {
		t.Error("record carries an embedding despite gateway failure")
	}
}

func TestSaveRedactsPII(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, stubEmbedder{vec: []float32{1}}, ServiceConfig{})

	svc.Save(context.Background(), "u1", "User: mon adresse est jean@example.fr", nil, 0.3)
	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	got := store.records[0].Content
	if strings.Contains(got, "jean@example.fr") || !strings.Contains(got, "[REDACTED_EMAIL]") {
		t.Fatalf("stored content %q, want redacted email", got)
	}
}

func TestSaveStoreFailureReturnsEmpty(t *testing.T) {
	store := &stubStore{insertErr: fmt.Errorf("connection refused")}
	svc := NewService(store, stubEmbedder{vec: []float32{1}}, ServiceConfig{})

	if id := svc.Save(context.Background(), "u1", "quelque chose", nil, 0.3); id != "" {
		t.Fatalf("Save() = %q on store failure, want empty", id)
	}
}

func TestSearchPassesTunedQuery(t *testing.T) {
	store := &stubStore{results: []Record{{ID: "a", Content: "souvenir"}}}
	svc := NewService(store, stubEmbedder{vec: []float32{0, 1}}, ServiceConfig{Threshold: 0.8, SearchLimit: 7})

	got := svc.Search(context.Background(), "question", "u1")
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Search() = %+v", got)
	}
	q := store.queries[0]
	if q.Threshold != 0.8 || q.Limit != 7 || q.UserID != "u1" {
		t.Errorf("query = %+v", q)
	}
}

func TestSearchFailuresReturnNil(t *testing.T) {
	t.Run("embedder", func(t *testing.T) {
		store := &stubStore{}
		svc := NewService(store, stubEmbedder{err: fmt.Errorf("gateway down")}, ServiceConfig{})
		if got := svc.Search(context.Background(), "q", "u1"); got != nil {
			t.Fatalf("Search() = %+v, want nil", got)
		}
		if len(store.queries) != 0 {
			t.Error("store queried despite embedding failure")
		}
	})
	t.Run("store", func(t *testing.T) {
		store := &stubStore{searchErr: fmt.Errorf("timeout")}
		svc := NewService(store, stubEmbedder{vec: []float32{1}}, ServiceConfig{})
		if got := svc.Search(context.Background(), "q", "u1"); got != nil {
			t.Fatalf("Search() = %+v, want nil", got)
		}
	})
}

func TestContextForFormatsBlock(t *testing.T) {
	store := &stubStore{results: []Record{
		{Content: "aime le café"},
		{Content: "habite à Paris"},
		{Content: "parle trois langues"},
		{Content: "souvenir surnuméraire"},
	}}
	svc := NewService(store, stubEmbedder{vec: []float32{1}}, ServiceConfig{ContextLimit: 3})

	got := svc.ContextFor(context.Background(), "question", "u1")
	want := "Contexte pertinent des conversations précédentes:\n- aime le café\n- habite à Paris\n- parle trois langues"
	if got != want {
		t.Fatalf("ContextFor() = %q, want %q", got, want)
	}
	if strings.Contains(got, "surnuméraire") {
		t.Error("context includes results beyond the limit")
	}
}

func TestContextForEmptyOnNoResults(t *testing.T) {
	cases := []struct {
		name string
		svc  *Service
	}{
		{"no results", NewService(&stubStore{}, stubEmbedder{vec: []float32{1}}, ServiceConfig{})},
		{"embedder failure", NewService(&stubStore{}, stubEmbedder{err: fmt.Errorf("down")}, ServiceConfig{})},
		{"store failure", NewService(&stubStore{searchErr: fmt.Errorf("down")}, stubEmbedder{vec: []float32{1}}, ServiceConfig{})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.svc.ContextFor(context.Background(), "q", "u1"); got != "" {
				t.Fatalf("ContextFor() = %q, want empty", got)
			}
		})
	}
}
