package ingest

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
	"github.com/hegdeshashank73/chat-analyser/internal/logger"
	"github.com/hegdeshashank73/chat-analyser/internal/parser"
)

// Options tunes the indexing run.
type Options struct {
	BatchSize     int
	ProgressEvery int // log progress every N indexed messages
}

// Stats summarizes an indexing run.
type Stats struct {
	Parsed  int // messages parsed from the export
	Skipped int // lines that did not parse as messages
	Indexed int // messages embedded and stored
	Failed  int // messages that could not be stored
}

// Service indexes a chat export: parse, embed in batches, store.
type Service struct {
	repo  Repository
	embed Embedder
	opts  Options
}

// New creates an ingest service.
func New(repo Repository, embed Embedder, opts Options) *Service {
	return &Service{repo: repo, embed: embed, opts: opts}
}

// Run parses the chat export from r and indexes every message. Batches that
// fail to store are logged and counted, the run keeps going. Embedding
// failures abort the run since they affect every remaining batch the same way.
func (s *Service) Run(ctx context.Context, r io.Reader) (Stats, error) {
	log := logger.FromContext(ctx)

	var stats Stats
	msgs, err := parser.ParseReader(r, func(line string) {
		stats.Skipped++
		log.Debug("skipped unparseable line", zap.String("line", line))
	})
	if err != nil {
		return stats, fmt.Errorf("parse export: %w", err)
	}
	stats.Parsed = len(msgs)

	lastProgress := 0
	for start := 0; start < len(msgs); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("indexing interrupted: %w", err)
		}

		end := start + s.opts.BatchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := msgs[start:end]

		vectors, err := s.embedBatch(ctx, batch)
		if err != nil {
			return stats, fmt.Errorf("embed batch at offset %d: %w", start, err)
		}

		withVectors := make([]domain.Message, len(batch))
		for i, m := range batch {
			withVectors[i] = m.WithVector(vectors[i])
		}

		if err := s.repo.InsertBatch(ctx, withVectors); err != nil {
			stats.Failed += len(batch)
			log.Warn("batch insert failed",
				zap.Int("offset", start),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		stats.Indexed += len(batch)

		if stats.Indexed-lastProgress >= s.opts.ProgressEvery {
			lastProgress = stats.Indexed
			log.Info("indexing progress",
				zap.Int("indexed", stats.Indexed),
				zap.Int("total", stats.Parsed),
			)
		}
	}

	log.Info("indexing complete",
		zap.Int("parsed", stats.Parsed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("indexed", stats.Indexed),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

// embedBatch vectorizes a batch of messages, using native batch embedding
// when the provider supports it.
func (s *Service) embedBatch(ctx context.Context, batch []domain.Message) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, m := range batch {
		texts[i] = m.Content()
	}

	var (
		result domain.BatchEmbeddingResult
		err    error
	)
	if batcher, ok := s.embed.(domain.BatchEmbedder); ok {
		result, err = batcher.BatchEmbed(ctx, texts)
	} else {
		result, err = domain.BatchFallback(ctx, s.embed, texts)
	}
	if err != nil {
		return nil, err
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d messages: %w",
			len(result.Embeddings), len(texts), domain.ErrEmbeddingProvider)
	}
	return result.Embeddings, nil
}
