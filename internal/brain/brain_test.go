package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/adambeloucif/abel/internal/llm"
	"github.com/adambeloucif/abel/internal/memory"
	"github.com/adambeloucif/abel/internal/observability"
	"github.com/adambeloucif/abel/internal/session"
)

// Prometheus instruments register globally, so the test binary shares one
// metrics instance.
var testMetrics = observability.NewMetrics("abel_brain_test")

type fakeProvider struct {
	mu        sync.Mutex
	reply     string
	fragments []string
	err       error
	gotCalls  [][]llm.Message
}

func (p *fakeProvider) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	p.mu.Lock()
	p.gotCalls = append(p.gotCalls, messages)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func (p *fakeProvider) StreamCompletion(ctx context.Context, messages []llm.Message, onDelta llm.DeltaHandler) (string, error) {
	p.mu.Lock()
	p.gotCalls = append(p.gotCalls, messages)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	var sb strings.Builder
	for _, f := range p.fragments {
		if err := onDelta(f); err != nil {
			return "", err
		}
		sb.WriteString(f)
	}
	return sb.String(), nil
}

func (p *fakeProvider) calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gotCalls
}

type recordingStore struct {
	mu      sync.Mutex
	records []memory.Record
}

func (s *recordingStore) Insert(ctx context.Context, rec memory.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return fmt.Sprintf("rec-%d", len(s.records)), nil
}

func (s *recordingStore) Search(ctx context.Context, q memory.SearchQuery) ([]memory.Record, error) {
	return nil, nil
}

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) stored() []memory.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]memory.Record, len(s.records))
	copy(out, s.records)
	return out
}

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedEmbedder) Dimensions() int { return 2 }

func newTestBrain(p *fakeProvider) (*Brain, *recordingStore) {
	store := &recordingStore{}
	memories := memory.NewService(store, fixedEmbedder{}, memory.ServiceConfig{})
	history := session.NewHistory(session.DefaultWindow)
	return New(p, memories, history, testMetrics, Config{ModelTimeout: 5 * time.Second, MemoryMinChars: 20}), store
}

func TestRespondWithoutUserSkipsMemory(t *testing.T) {
	provider := &fakeProvider{reply: "Bonjour, comment puis-je vous aider ?"}
	b, store := newTestBrain(provider)

	got := b.Respond(context.Background(), "Salut, qui es-tu exactement ?", "s1", "")
	if got != provider.reply {
		t.Fatalf("Respond() = %q, want %q", got, provider.reply)
	}
	if n := len(store.stored()); n != 0 {
		t.Fatalf("stored %d memories without a user id, want 0", n)
	}
	if n := len(b.history.Get("s1")); n != 2 {
		t.Fatalf("history length = %d, want 2", n)
	}
}

func TestRespondCommitsMemoryForKnownUser(t *testing.T) {
	provider := &fakeProvider{reply: "Voici ce que je sais sur le sujet."}
	b, store := newTestBrain(provider)

	msg := "Raconte-moi tout sur les baleines bleues" // over the length filter
	b.Respond(context.Background(), msg, "s1", "u1")

	records := store.stored()
	if len(records) != 1 {
		t.Fatalf("stored %d memories, want 1", len(records))
	}
	rec := records[0]
	if rec.UserID != "u1" {
		t.Errorf("record user = %q, want u1", rec.UserID)
	}
	if rec.Importance != 0.3 {
		t.Errorf("record importance = %v, want 0.3", rec.Importance)
	}
	if !strings.HasPrefix(rec.Content, "User: "+msg) {
		t.Errorf("record content %q does not open with the user message", rec.Content)
	}
	if !strings.HasSuffix(rec.Content, "...") {
		t.Errorf("record content %q does not end with the response preview marker", rec.Content)
	}
	if rec.Metadata["session_id"] != "s1" || rec.Metadata["type"] != "conversation" {
		t.Errorf("record metadata = %v", rec.Metadata)
	}
}

func TestRespondSkipsShortMessages(t *testing.T) {
	provider := &fakeProvider{reply: "Oui."}
	b, store := newTestBrain(provider)

	b.Respond(context.Background(), "Salut !", "s1", "u1")
	if n := len(store.stored()); n != 0 {
		t.Fatalf("stored %d memories for a short message, want 0", n)
	}
	if n := len(b.history.Get("s1")); n != 2 {
		t.Fatalf("history length = %d, want 2", n)
	}
}

func TestRespondModelFailure(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("upstream unavailable")}
	b, store := newTestBrain(provider)

	got := b.Respond(context.Background(), "Une question suffisamment longue ici", "s1", "u1")
	if !strings.HasPrefix(got, "Désolé, j'ai rencontré une erreur:") {
		t.Fatalf("Respond() = %q, want user-facing error text", got)
	}
	if n := len(b.history.Get("s1")); n != 0 {
		t.Errorf("history length = %d after a failed call, want 0", n)
	}
	if n := len(store.stored()); n != 0 {
		t.Errorf("stored %d memories after a failed call, want 0", n)
	}
}

func TestRespondIncludesHistoryInPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "D'accord."}
	b, _ := newTestBrain(provider)

	b.Respond(context.Background(), "premier message", "s1", "")
	b.Respond(context.Background(), "deuxième message", "s1", "")

	calls := provider.calls()
	if len(calls) != 2 {
		t.Fatalf("provider called %d times, want 2", len(calls))
	}
	second := calls[1]
	// system + two prior turns + new user message
	if len(second) != 4 {
		t.Fatalf("second call carried %d messages, want 4", len(second))
	}
	if second[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %q, want system", second[0].Role)
	}
	if second[1].Content != "premier message" || second[2].Content != "D'accord." {
		t.Errorf("history turns not replayed: %+v", second[1:3])
	}
	if second[3].Role != llm.RoleUser || second[3].Content != "deuxième message" {
		t.Errorf("final message = %+v", second[3])
	}
}

func TestStreamDeliversAndCommits(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"Les ", "baleines ", "bleues ", "sont ", "immenses."}}
	b, store := newTestBrain(provider)

	ch := b.Stream(context.Background(), "Parle-moi des baleines bleues", "s1", "u1")
	var sb strings.Builder
	for frag := range ch {
		sb.WriteString(frag)
	}
	if got := sb.String(); got != "Les baleines bleues sont immenses." {
		t.Fatalf("streamed text = %q", got)
	}
	if n := len(b.history.Get("s1")); n != 2 {
		t.Errorf("history length = %d, want 2", n)
	}
	if n := len(store.stored()); n != 1 {
		t.Errorf("stored %d memories, want 1", n)
	}
}

func TestStreamAbandonedCommitsNothing(t *testing.T) {
	provider := &fakeProvider{fragments: []string{"a", "b", "c", "d", "e"}}
	b, store := newTestBrain(provider)

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Stream(ctx, "Une question suffisamment longue ici", "s1", "u1")

	<-ch
	<-ch
	cancel()
	for range ch {
	}

	if n := len(b.history.Get("s1")); n != 0 {
		t.Errorf("history length = %d after abandonment, want 0", n)
	}
	if n := len(store.stored()); n != 0 {
		t.Errorf("stored %d memories after abandonment, want 0", n)
	}
}

func TestStreamProviderError(t *testing.T) {
	provider := &fakeProvider{err: fmt.Errorf("stream reset")}
	b, store := newTestBrain(provider)

	ch := b.Stream(context.Background(), "Une question suffisamment longue ici", "s1", "u1")
	var frags []string
	for frag := range ch {
		frags = append(frags, frag)
	}
	if len(frags) != 1 || !strings.HasPrefix(frags[0], "Erreur:") {
		t.Fatalf("fragments = %q, want a single error fragment", frags)
	}
	if n := len(b.history.Get("s1")); n != 0 {
		t.Errorf("history length = %d after a failed stream, want 0", n)
	}
	if n := len(store.stored()); n != 0 {
		t.Errorf("stored %d memories after a failed stream, want 0", n)
	}
}

func TestClear(t *testing.T) {
	provider := &fakeProvider{reply: "Compris."}
	b, _ := newTestBrain(provider)

	b.Respond(context.Background(), "note ceci", "s1", "")
	b.Clear("s1")
	if n := len(b.history.Get("s1")); n != 0 {
		t.Fatalf("history length = %d after clear, want 0", n)
	}
}
