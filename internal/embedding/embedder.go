// Package embedding turns chunk text into vectors.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docchat/internal/domain"
)

// EmbedAll embeds texts in batches of batchSize, running at most concurrency
// batches at once. The first failing batch cancels the rest and its error is
// returned; no partial result is ever returned.
func EmbedAll(ctx context.Context, emb domain.Embedder, texts []string, batchSize, concurrency int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		g.Go(func() error {
			out, err := emb.EmbedBatch(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(out) != end-start {
				return fmt.Errorf("%s: expected %d embeddings, got %d", emb.Name(), end-start, len(out))
			}
			for i, v := range out {
				if len(v) == 0 {
					return fmt.Errorf("%s: empty embedding for input %d", emb.Name(), start+i)
				}
			}
			copy(vectors[start:end], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
