package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
	"docchat/internal/embedding/tfidf"
	"docchat/internal/index"
	"docchat/internal/vectorstore/memory"
)

func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	b := index.NewBuilder(func() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }, memory.Factory())
	idx, err := b.Build(context.Background(), []domain.Chunk{{ID: "1", Text: "alpha beta"}})
	require.NoError(t, err)
	return idx
}

func TestSession_StartsUninitialized(t *testing.T) {
	s := New()
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Ready())
	assert.Nil(t, s.Index())
	assert.Empty(t, s.History())
}

func TestSession_SetIndexReturnsPrevious(t *testing.T) {
	s := New()
	first, second := buildIndex(t), buildIndex(t)

	assert.Nil(t, s.SetIndex(first))
	assert.True(t, s.Ready())
	assert.Same(t, first, s.SetIndex(second))
	assert.Same(t, second, s.Index())
}

func TestSession_HistoryIsCopy(t *testing.T) {
	s := New()
	state := s.AppendTurns(
		domain.Turn{Speaker: domain.SpeakerUser, Message: "q"},
		domain.Turn{Speaker: domain.SpeakerAssistant, Message: "a"},
	)
	require.Len(t, state, 2)

	h := s.History()
	h[0].Message = "changed"
	assert.Equal(t, "q", s.History()[0].Message)
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(nil)
	s := m.Create()
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	s.SetIndex(buildIndex(t))
	s.AppendTurns(domain.Turn{Speaker: domain.SpeakerUser, Message: "q"})
	assert.False(t, s.Ended())

	require.NoError(t, m.End(context.Background(), s.ID))
	assert.True(t, s.Ended())
	assert.False(t, s.Ready())
	assert.Empty(t, s.History())
	assert.Equal(t, 0, m.Len())

	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, m.End(context.Background(), s.ID), domain.ErrSessionNotFound)
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(nil)
	m.Create()
	m.Create()
	m.Shutdown(context.Background())
	assert.Equal(t, 0, m.Len())
}
