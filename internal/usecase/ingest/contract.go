package ingest

import (
	"context"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// Repository defines the storage contract for bulk message indexing.
type Repository interface {
	InsertBatch(ctx context.Context, msgs []domain.Message) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
