package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestStorage_SearchOrdersByScore(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 2))
	chunks := []domain.Chunk{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}, {ID: "c", Text: "xy"}}
	vecs := [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}
	require.NoError(t, s.Upsert(ctx, chunks, vecs))

	res, err := s.Search(ctx, []float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Chunk.ID)
	assert.Equal(t, "c", res[1].Chunk.ID)
	assert.InDelta(t, 0.8, res[1].Score, 1e-6)
}

func TestStorage_TopKLargerThanStore(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ID: "a"}}, [][]float32{{1}}))

	res, err := s.Search(ctx, []float32{1}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestStorage_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.Error(t, s.Init(ctx, 0))
	require.Error(t, s.Upsert(ctx, []domain.Chunk{{ID: "a"}}, [][]float32{{1}}), "uninitialized")

	require.NoError(t, s.Init(ctx, 2))
	require.Error(t, s.Upsert(ctx, []domain.Chunk{{ID: "a"}}, nil))
	require.Error(t, s.Upsert(ctx, []domain.Chunk{{ID: "a"}}, [][]float32{{1}}))
	_, err := s.Search(ctx, []float32{1}, 1)
	require.Error(t, err)
}

func TestStorage_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	require.NoError(t, s.Init(ctx, 1))
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{{ID: "a"}}, [][]float32{{1}}))
	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestFactory_IndependentStores(t *testing.T) {
	ctx := context.Background()
	f := Factory()
	a, err := f("one")
	require.NoError(t, err)
	b, err := f("two")
	require.NoError(t, err)
	require.NoError(t, a.Init(ctx, 1))
	require.NoError(t, b.Init(ctx, 1))
	require.NoError(t, a.Upsert(ctx, []domain.Chunk{{ID: "a"}}, [][]float32{{1}}))

	res, err := b.Search(ctx, []float32{1}, 4)
	require.NoError(t, err)
	assert.Empty(t, res)
}
