// Package message persists chat messages in the vector store.
package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hegdeshashank73/chat-analyser/internal/db"
	"github.com/hegdeshashank73/chat-analyser/internal/domain"
)

// store is the consumer interface for message persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds HNSW index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores messages as Redis hashes under <prefix>messages:<id> with an
// FT vector index over them.
type Repo struct {
	store  store
	prefix string
	dim    int
	hnsw   HNSWConfig
}

// New creates a message repository. vectorDim fixes the index dimensionality;
// every insert and query is checked against it.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	return &Repo{store: s, prefix: keyPrefix, dim: vectorDim}
}

// WithHNSW sets HNSW build parameters used at schema creation.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureSchema creates the message index if it does not exist yet.
// Idempotent: an existing index is left untouched.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := buildIndex(r.indexName(), r.keyPrefix(), r.dim, r.hnsw)
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Insert stores a single embedded message.
func (r *Repo) Insert(ctx context.Context, msg domain.Message) error {
	if err := r.checkDim(msg.Vector()); err != nil {
		return err
	}
	key := r.keyPrefix() + messageID(msg)
	if err := r.store.HSet(ctx, key, buildHashFields(msg)); err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	return nil
}

// InsertBatch stores embedded messages in a single pipelined round-trip.
func (r *Repo) InsertBatch(ctx context.Context, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(msgs))
	for i := range msgs {
		if err := r.checkDim(msgs[i].Vector()); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		items[i] = db.HashSetItem{
			Key:    r.keyPrefix() + messageID(msgs[i]),
			Fields: buildHashFields(msgs[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("insert batch of %d: %w", len(msgs), err)
	}
	return nil
}

// SearchNear returns the k nearest messages to the query vector, each with
// its raw cosine distance. Results arrive in the engine's distance order.
func (r *Repo) SearchNear(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	if err := r.checkDim(vector); err != nil {
		return nil, err
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"__content", "sender", "timestamp", "__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("search near: %w", err)
	}
	if res == nil || res.Total == 0 {
		return nil, nil
	}

	hits := make([]domain.Hit, 0, len(res.Entries))
	for _, entry := range res.Entries {
		hits = append(hits, parseHit(entry))
	}
	return hits, nil
}

// FetchBySender returns up to limit messages from the given sender.
func (r *Repo) FetchBySender(ctx context.Context, sender string, limit int) ([]domain.Message, error) {
	query := fmt.Sprintf("@sender:{%s}", escapeTag(sender))
	return r.fetch(ctx, query, limit)
}

// FetchByTimeRange returns up to limit messages sent within [from, to].
func (r *Repo) FetchByTimeRange(ctx context.Context, from, to time.Time, limit int) ([]domain.Message, error) {
	query := fmt.Sprintf("@timestamp:[%d %d]", from.Unix(), to.Unix())
	return r.fetch(ctx, query, limit)
}

// Count returns the number of indexed messages.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func (r *Repo) fetch(ctx context.Context, query string, limit int) ([]domain.Message, error) {
	res, err := r.store.SearchList(ctx, r.indexName(), query, 0, limit,
		[]string{"__content", "sender", "timestamp"})
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", query, err)
	}
	if res == nil || res.Total == 0 {
		return nil, nil
	}

	msgs := make([]domain.Message, 0, len(res.Entries))
	for _, entry := range res.Entries {
		msgs = append(msgs, parseMessage(entry))
	}
	return msgs, nil
}

func (r *Repo) checkDim(v []float32) error {
	if len(v) != r.dim {
		return fmt.Errorf("got %d dimensions, index expects %d: %w",
			len(v), r.dim, domain.ErrVectorDimMismatch)
	}
	return nil
}

func (r *Repo) keyPrefix() string {
	return r.prefix + "messages:"
}

func (r *Repo) indexName() string {
	return r.prefix + "messages:idx"
}
