// Package index builds and queries the per-session vector index.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docchat/internal/domain"
	"docchat/internal/embedding"
	"docchat/internal/logger"
	"docchat/internal/vectorstore"
)

// BuildError reports a failed index build. The previous index, if any, is
// left untouched.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "build index: " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }

// EmbedderFactory returns an embedder owned by a single index. Corpus-fitted
// embedders such as TF-IDF must not be shared across indexes.
type EmbedderFactory func() (domain.Embedder, error)

// Builder embeds chunks and loads them into a fresh store.
type Builder struct {
	newEmbedder EmbedderFactory
	stores      vectorstore.Factory
	batchSize   int
	concurrency int
	log         *logger.Logger
}

type Option func(*Builder)

// WithBatching sets how many chunks go into one embedding request and how
// many requests may run at once.
func WithBatching(batchSize, concurrency int) Option {
	return func(b *Builder) {
		b.batchSize = batchSize
		b.concurrency = concurrency
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

func NewBuilder(newEmbedder EmbedderFactory, stores vectorstore.Factory, opts ...Option) *Builder {
	b := &Builder{
		newEmbedder: newEmbedder,
		stores:      stores,
		batchSize:   64,
		concurrency: 1,
		log:         logger.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build creates an index over chunks. Any failure is returned as *BuildError
// and nothing partial is kept.
func (b *Builder) Build(ctx context.Context, chunks []domain.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, &BuildError{Err: fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)}
	}
	emb, err := b.newEmbedder()
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if err := emb.Prepare(texts); err != nil {
		return nil, &BuildError{Err: err}
	}
	vectors, err := embedding.EmbedAll(ctx, emb, texts, b.batchSize, b.concurrency)
	if err != nil {
		return nil, &BuildError{Err: err}
	}

	name := uuid.NewString()
	store, err := b.stores(name)
	if err != nil {
		return nil, &BuildError{Err: err}
	}
	if err := store.Init(ctx, len(vectors[0])); err != nil {
		b.discard(store)
		return nil, &BuildError{Err: err}
	}
	if err := store.Upsert(ctx, chunks, vectors); err != nil {
		b.discard(store)
		return nil, &BuildError{Err: err}
	}
	b.log.Debug("index built", "index", name, "embedder", emb.Name(), "chunks", len(chunks), "dimension", len(vectors[0]))

	owned := make([]domain.Chunk, len(chunks))
	copy(owned, chunks)
	return &Index{name: name, store: store, embedder: emb, chunks: owned}, nil
}

func (b *Builder) discard(store domain.VectorStore) {
	if err := store.Clear(context.Background()); err != nil {
		b.log.Warn("discard partial index failed", "error", err)
	}
}

// Index answers similarity queries over one immutable set of chunks.
type Index struct {
	name     string
	store    domain.VectorStore
	embedder domain.Embedder
	chunks   []domain.Chunk
}

// Name identifies the index within its store backend.
func (i *Index) Name() string { return i.name }

// Chunks returns a copy of the indexed chunks in insertion order.
func (i *Index) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(i.chunks))
	copy(out, i.chunks)
	return out
}

// Len reports the number of indexed chunks.
func (i *Index) Len() int { return len(i.chunks) }

// Search returns up to k chunks most similar to query, best first. When the
// query shares no vocabulary with the corpus, or every score is zero, it
// falls back to lexical overlap ranking.
func (i *Index) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 4
	}
	vecs, err := i.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, errors.New("embedder returned no query vector")
	}
	if isZero(vecs[0]) {
		return lexicalSearch(i.chunks, query, k), nil
	}
	res, err := i.store.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return lexicalSearch(i.chunks, query, k), nil
	}
	return res, nil
}

// Close releases the backing store.
func (i *Index) Close(ctx context.Context) error {
	return i.store.Clear(ctx)
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
