package llm

import "context"

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the model prompt sequence.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DeltaHandler receives streaming text fragments.
type DeltaHandler func(delta string) error

// ChatProvider bridges the assistant runtime with a hosted chat model.
type ChatProvider interface {
	// Complete runs a blocking chat completion and returns the full response text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// StreamCompletion streams the response through onDelta and returns the
	// concatenated text once the provider stream is exhausted. onDelta errors
	// abort the stream and propagate.
	StreamCompletion(ctx context.Context, messages []Message, onDelta DeltaHandler) (string, error)
}

// Embedder converts text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
