package answer

import (
	"context"
	"testing"
	"time"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

type mockRepo struct {
	searchNearFn func(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

func (m *mockRepo) SearchNear(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	return m.searchNearFn(ctx, vector, k)
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

type mockCompleter struct {
	completeFn func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return m.completeFn(ctx, systemPrompt, userPrompt)
}

func fixedEmbedder(vec []float32) *mockEmbedder {
	return &mockEmbedder{
		embedFn: func(_ context.Context, _ string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Embedding: vec, TotalTokens: 3}, nil
		},
	}
}

func hitAt(content string, distance float64) domain.Hit {
	return domain.NewHit(content, distance, "Alice", time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC))
}

func newTestService(t *testing.T, repo *mockRepo, embed *mockEmbedder, complete *mockCompleter) *Service {
	t.Helper()
	pb, err := NewPromptBuilder(3000, nil)
	if err != nil {
		t.Fatalf("NewPromptBuilder: %v", err)
	}
	return New(repo, embed, complete, pb, Options{
		Limit:             7,
		Oversample:        100,
		DistanceThreshold: 0.75,
	})
}
