package answer

import (
	"context"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// Repository defines the storage contract for nearest-neighbor retrieval.
type Repository interface {
	SearchNear(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Completer produces an answer from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
