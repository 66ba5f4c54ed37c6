package answer

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
	"github.com/hegdeshashank73/chat-analyser/internal/logger"
	"github.com/hegdeshashank73/chat-analyser/internal/metrics"
)

// NoContextAnswer is returned when retrieval finds nothing usable.
const NoContextAnswer = "I couldn't find any relevant information to answer your question."

// Options tunes the retrieval pipeline.
type Options struct {
	Limit             int     // max context messages per answer
	Oversample        int     // candidates fetched before filtering
	DistanceThreshold float64 // cosine distance cutoff, lower is closer
}

// Answer is the result of a full question-answering run.
type Answer struct {
	Text    string
	Sources []domain.Hit
}

// Service runs the retrieval-augmented answering pipeline: embed the
// question, fetch nearest messages, filter, prompt, complete.
type Service struct {
	repo     Repository
	embed    Embedder
	complete Completer
	prompt   *PromptBuilder
	opts     Options
}

// New creates an answer service.
func New(repo Repository, embed Embedder, complete Completer, prompt *PromptBuilder, opts Options) *Service {
	return &Service{
		repo:     repo,
		embed:    embed,
		complete: complete,
		prompt:   prompt,
		opts:     opts,
	}
}

// Retrieve embeds the question and returns the closest informative messages,
// sorted by ascending distance and capped at Options.Limit.
func (s *Service) Retrieve(ctx context.Context, query string) ([]domain.Hit, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	candidates, err := s.repo.SearchNear(ctx, embResult.Embedding, s.opts.Oversample)
	if err != nil {
		return nil, fmt.Errorf("search near: %w", err)
	}
	metrics.RetrievalCandidatesTotal.WithLabelValues("fetched").Add(float64(len(candidates)))

	filtered := make([]domain.Hit, 0, len(candidates))
	for _, hit := range candidates {
		if hit.Distance() > s.opts.DistanceThreshold {
			metrics.RetrievalCandidatesTotal.WithLabelValues("over_distance").Inc()
			continue
		}
		if !IsInformative(hit.Content(), query) {
			metrics.RetrievalCandidatesTotal.WithLabelValues("uninformative").Inc()
			continue
		}
		filtered = append(filtered, hit)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Distance() < filtered[j].Distance()
	})
	if len(filtered) > s.opts.Limit {
		filtered = filtered[:s.opts.Limit]
	}
	metrics.RetrievalCandidatesTotal.WithLabelValues("returned").Add(float64(len(filtered)))

	logger.FromContext(ctx).Debug("retrieval complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(filtered)),
	)

	return filtered, nil
}

// Ask answers a question over the indexed chat history. When retrieval yields
// no usable context the completion API is not called at all.
func (s *Service) Ask(ctx context.Context, query string) (Answer, error) {
	hits, err := s.Retrieve(ctx, query)
	if err != nil {
		return Answer{}, err
	}

	if len(hits) == 0 {
		return Answer{Text: NoContextAnswer}, nil
	}

	userPrompt := s.prompt.Build(query, hits)

	text, err := s.complete.Complete(ctx, SystemPrompt, userPrompt)
	if err != nil {
		return Answer{}, fmt.Errorf("complete: %w", err)
	}

	return Answer{Text: text, Sources: hits}, nil
}
