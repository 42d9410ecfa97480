package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// MockProvider returns deterministic local replies when no hosted model is
// configured. Streaming emits word-sized fragments so consumers exercise the
// same code path as a real provider.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return buildMockReply(messages), nil
}

func (p *MockProvider) StreamCompletion(ctx context.Context, messages []Message, onDelta DeltaHandler) (string, error) {
	text := buildMockReply(messages)
	if onDelta == nil {
		return text, nil
	}

	var sb strings.Builder
	for _, word := range strings.SplitAfter(text, " ") {
		select {
		case <-ctx.Done():
			return sb.String(), ctx.Err()
		default:
		}
		if word == "" {
			continue
		}
		sb.WriteString(word)
		if err := onDelta(word); err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

func buildMockReply(messages []Message) string {
	var lastUser string
	for _, m := range messages {
		if m.Role == RoleUser {
			lastUser = m.Content
		}
	}
	lastUser = strings.TrimSpace(lastUser)
	if lastUser == "" {
		return "[A.B.E.L] Je suis à l'écoute."
	}
	return fmt.Sprintf("[A.B.E.L] J'ai bien reçu: %s", lastUser)
}

// MockEmbedder produces deterministic unit vectors from a text hash, for
// local runs and tests without an embedding provider.
type MockEmbedder struct {
	dimensions int
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &MockEmbedder{dimensions: dimensions}
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float64(int64(seed)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func (e *MockEmbedder) Dimensions() int { return e.dimensions }
