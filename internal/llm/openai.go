package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/adambeloucif/abel/internal/reliability"
)

const (
	maxAttempts  = 3
	retryBackoff = 250 * time.Millisecond
	retryCap     = 2 * time.Second
)

// OpenAIProvider implements ChatProvider and Embedder on top of the OpenAI
// API (or any OpenAI-compatible endpoint via a custom base URL).
type OpenAIProvider struct {
	client         openai.Client
	model          string
	embeddingModel string
	dimensions     int
}

// OpenAIConfig controls provider construction.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	EmbeddingDim   int
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4-turbo-preview"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	dim := cfg.EmbeddingDim
	if dim <= 0 {
		dim = 1536
	}

	return &OpenAIProvider{
		client:         openai.NewClient(opts...),
		model:          model,
		embeddingModel: embeddingModel,
		dimensions:     dim,
	}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := p.client.Chat.Completions.New(ctx, p.buildParams(messages))
		if err != nil {
			lastErr = fmt.Errorf("chat completion: %w", err)
			if !retryable(err) || !reliability.Sleep(ctx, reliability.ExponentialBackoff(attempt, retryBackoff, retryCap)) {
				return "", lastErr
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("chat completion returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

func (p *OpenAIProvider) StreamCompletion(ctx context.Context, messages []Message, onDelta DeltaHandler) (string, error) {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(messages))
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			// Final chunk may only carry usage.
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return sb.String(), err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return sb.String(), fmt.Errorf("chat streaming: %w", err)
	}
	return sb.String(), nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(p.embeddingModel),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		if err != nil {
			lastErr = fmt.Errorf("create embedding: %w", err)
			if !retryable(err) || !reliability.Sleep(ctx, reliability.ExponentialBackoff(attempt, retryBackoff, retryCap)) {
				return nil, lastErr
			}
			continue
		}
		if len(resp.Data) == 0 {
			return nil, errors.New("embedding response is empty")
		}

		raw := resp.Data[0].Embedding
		out := make([]float32, len(raw))
		for i, v := range raw {
			out[i] = float32(v)
		}
		return out, nil
	}
	return nil, lastErr
}

// retryable reports whether the API error is transient. Streaming calls are
// never retried; a consumer may already have seen fragments.
func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return reliability.IsRetryableHTTPStatus(apiErr.StatusCode)
	}
	return false
}

func (p *OpenAIProvider) Dimensions() int { return p.dimensions }

func (p *OpenAIProvider) buildParams(messages []Message) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    msgs,
		Temperature: openai.Float(0.7),
	}
}
