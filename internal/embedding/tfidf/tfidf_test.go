package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	s := 0.0
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbedder_RequiresPrepare(t *testing.T) {
	e := NewEmbedder()
	_, err := e.EmbedBatch(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.Equal(t, 0, e.Dimension())
}

func TestEmbedder_PrepareEmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	require.Error(t, e.Prepare(nil))
	require.Error(t, e.Prepare([]string{"the and of"}))
}

func TestEmbedder_VectorsAreNormalized(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"Invoices are due within thirty days.",
		"The warehouse stores apples and pears.",
	}))

	vecs, err := e.EmbedBatch(context.Background(), []string{"apples pears warehouse", "invoices due"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	for _, v := range vecs {
		assert.Len(t, v, e.Dimension())
		assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)
	}
}

func TestEmbedder_SimilarTextsScoreHigher(t *testing.T) {
	corpus := []string{
		"Invoices are due within thirty days of delivery.",
		"The warehouse stores apples and pears in crates.",
	}
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	docs, err := e.EmbedBatch(context.Background(), corpus)
	require.NoError(t, err)
	q, err := e.EmbedBatch(context.Background(), []string{"When are invoices due?"})
	require.NoError(t, err)

	assert.Greater(t, dot(q[0], docs[0]), dot(q[0], docs[1]))
}

func TestEmbedder_UnknownTermsGiveZeroVector(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha beta"}))

	vecs, err := e.EmbedBatch(context.Background(), []string{"gamma"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, dot(vecs[0], vecs[0]))
}

func TestEmbedder_CancelledContext(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{"alpha beta"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EmbedBatch(ctx, []string{"alpha"})
	assert.ErrorIs(t, err, context.Canceled)
}
