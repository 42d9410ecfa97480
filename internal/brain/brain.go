package brain

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/adambeloucif/abel/internal/llm"
	"github.com/adambeloucif/abel/internal/memory"
	"github.com/adambeloucif/abel/internal/observability"
	"github.com/adambeloucif/abel/internal/session"
)

// conversationImportance is the fixed importance assigned to memories
// created from completed exchanges.
const conversationImportance = 0.3

// responsePreviewRunes bounds the assistant response excerpt kept in a
// condensed memory.
const responsePreviewRunes = 200

// Config tunes orchestration behavior.
type Config struct {
	// ModelTimeout bounds each model call; expiry is treated as a provider
	// failure and surfaces as in-band error text.
	ModelTimeout time.Duration
	// MemoryMinChars is the minimum user-message length (in runes) for an
	// exchange to be committed to long-term memory.
	MemoryMinChars int
}

// Brain composes the model request for each exchange and manages its full
// lifecycle: memory retrieval, prompt assembly, the model call, history
// update and conditional long-term memory commit. No collaborator failure
// ever crosses this boundary as an error; callers always receive text.
type Brain struct {
	provider llm.ChatProvider
	memories *memory.Service
	history  *session.History
	metrics  *observability.Metrics
	cfg      Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(provider llm.ChatProvider, memories *memory.Service, history *session.History, metrics *observability.Metrics, cfg Config) *Brain {
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = 60 * time.Second
	}
	if cfg.MemoryMinChars <= 0 {
		cfg.MemoryMinChars = 20
	}
	return &Brain{
		provider: provider,
		memories: memories,
		history:  history,
		metrics:  metrics,
		cfg:      cfg,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Respond processes a user message and returns the full response text. On
// any failure it returns a user-facing error message instead of propagating.
func (b *Brain) Respond(ctx context.Context, message, sessionID, userID string) string {
	unlock := b.lockSession(sessionID)
	defer unlock()

	messages := b.buildMessages(ctx, message, sessionID, userID)

	mctx, cancel := context.WithTimeout(ctx, b.cfg.ModelTimeout)
	defer cancel()

	start := time.Now()
	text, err := b.provider.Complete(mctx, messages)
	if err != nil {
		log.Printf("brain: model call failed: %v", err)
		b.metrics.ProviderErrors.WithLabelValues("model", "complete").Inc()
		return fmt.Sprintf("Désolé, j'ai rencontré une erreur: %v", err)
	}
	b.metrics.ObserveModelLatency(time.Since(start))

	b.history.Append(sessionID, session.RoleUser, message)
	b.history.Append(sessionID, session.RoleAssistant, text)
	b.remember(ctx, sessionID, userID, message, text)

	return text
}

// Stream processes a user message and returns a channel of response
// fragments. The channel is closed when the stream ends. History and memory
// are committed only after the provider stream is fully consumed; if the
// caller abandons the stream (by cancelling ctx) the exchange is treated as
// if it never happened. On a provider failure, a single final error-text
// fragment is emitted before the channel closes.
func (b *Brain) Stream(ctx context.Context, message, sessionID, userID string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		unlock := b.lockSession(sessionID)
		defer unlock()

		messages := b.buildMessages(ctx, message, sessionID, userID)

		mctx, cancel := context.WithTimeout(ctx, b.cfg.ModelTimeout)
		defer cancel()

		start := time.Now()
		first := true
		full, err := b.provider.StreamCompletion(mctx, messages, func(delta string) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case out <- delta:
				if first {
					first = false
					b.metrics.ObserveFirstChunkLatency(time.Since(start))
				}
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				// Abandoned by the consumer: no history, no memory.
				return
			}
			log.Printf("brain: streaming failed: %v", err)
			b.metrics.ProviderErrors.WithLabelValues("model", "stream").Inc()
			select {
			case out <- fmt.Sprintf("Erreur: %v", err):
			case <-ctx.Done():
			}
			return
		}
		if ctx.Err() != nil {
			// Cancelled while the last fragments were in flight.
			return
		}
		b.metrics.ObserveModelLatency(time.Since(start))

		b.history.Append(sessionID, session.RoleUser, message)
		b.history.Append(sessionID, session.RoleAssistant, full)
		b.remember(ctx, sessionID, userID, message, full)
	}()
	return out
}

// Clear drops the session's conversation history.
func (b *Brain) Clear(sessionID string) {
	b.history.Clear(sessionID)
	log.Printf("brain: history cleared for session %s", sessionID)
}

// buildMessages assembles [system] + history + new user turn. The memory
// context block is retrieved only when a user id is known.
func (b *Brain) buildMessages(ctx context.Context, message, sessionID, userID string) []llm.Message {
	memoryContext := ""
	if userID != "" {
		memoryContext = b.memories.ContextFor(ctx, message, userID)
	}

	turns := b.history.Get(sessionID)
	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(memoryContext)})
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: llm.Role(t.Role), Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return messages
}

// remember commits a condensed exchange to long-term memory when the user is
// known and the message passes the crude relevance filter.
func (b *Brain) remember(ctx context.Context, sessionID, userID, message, response string) {
	if userID == "" || utf8.RuneCountInString(message) <= b.cfg.MemoryMinChars {
		return
	}

	content := fmt.Sprintf("User: %s\nAssistant: %s...", message, truncateRunes(response, responsePreviewRunes))
	id := b.memories.Save(ctx, userID, content, map[string]any{
		"session_id": sessionID,
		"type":       "conversation",
	}, conversationImportance)

	if id == "" {
		b.metrics.MemoryOps.WithLabelValues("save", "failed").Inc()
		return
	}
	b.metrics.MemoryOps.WithLabelValues("save", "ok").Inc()
}

func (b *Brain) lockSession(sessionID string) func() {
	b.mu.Lock()
	l, ok := b.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[sessionID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
