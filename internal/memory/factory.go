package memory

import (
	"context"
	"strings"
)

// NewStore creates a pgvector-backed store when configured, otherwise an
// embedded in-process store.
func NewStore(ctx context.Context, databaseURL string, embeddingDim int) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewChromemStore()
	}
	return NewPostgresStore(ctx, databaseURL, embeddingDim)
}
