package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
	"docchat/internal/service"
	"docchat/internal/session"
)

type fakePort struct {
	processErr error
	askErr     error
	asked      []string
}

func (f *fakePort) Process(context.Context, *session.Session, []domain.Document) (*service.ProcessReport, error) {
	if f.processErr != nil {
		return &service.ProcessReport{}, f.processErr
	}
	return &service.ProcessReport{Accepted: []string{"a.pdf"}, Chunks: 2, Summary: "Invoices summary."}, nil
}

func (f *fakePort) Ask(_ context.Context, sess *session.Session, q string) ([]domain.Turn, error) {
	f.asked = append(f.asked, q)
	if f.askErr != nil {
		return nil, f.askErr
	}
	return sess.AppendTurns(
		domain.Turn{Speaker: domain.SpeakerUser, Message: q},
		domain.Turn{Speaker: domain.SpeakerAssistant, Message: "Invoices are due in thirty days."},
	), nil
}

func newModel(port *fakePort) Model {
	m := New(context.Background(), port, session.New(), nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func typeAndEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestModel_ProcessSuccess(t *testing.T) {
	port := &fakePort{}
	m := newModel(port)
	require.True(t, m.busy)

	next, _ := m.Update(m.processCmd()())
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, "Invoices summary.", m.summary)
	assert.Equal(t, "Ready. Ask a question.", m.status)
	assert.Contains(t, m.View(), "Invoices summary.")
}

func TestModel_ProcessFailureShowsUserMessage(t *testing.T) {
	m := newModel(&fakePort{processErr: domain.ErrNoText})
	next, _ := m.Update(m.processCmd()())
	m = next.(Model)
	assert.Equal(t, service.MsgNoText, m.status)
}

func TestModel_AskRoundTrip(t *testing.T) {
	port := &fakePort{}
	m := newModel(port)
	next, _ := m.Update(processedMsg{report: &service.ProcessReport{Chunks: 1}})
	m = next.(Model)

	m, cmd := typeAndEnter(t, m, "When are invoices due?")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.busy)
	require.Len(t, m.turns, 2)
	assert.Equal(t, []string{"When are invoices due?"}, port.asked)
	assert.Contains(t, m.renderTranscript(), "You: When are invoices due?")
}

func TestModel_AskErrorKeepsQuestion(t *testing.T) {
	port := &fakePort{askErr: &domain.ProviderError{Kind: domain.KindRateLimited}}
	m := newModel(port)
	next, _ := m.Update(processedMsg{report: &service.ProcessReport{Chunks: 1}})
	m = next.(Model)

	m, cmd := typeAndEnter(t, m, "q?")
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, service.MsgRateLimited, m.status)
	assert.Equal(t, "q?", m.input.Value())
	assert.Empty(t, m.turns)
}

func TestModel_EnterIgnoredWhileBusy(t *testing.T) {
	m := newModel(&fakePort{})
	_, cmd := typeAndEnter(t, m, "too early")
	assert.Nil(t, cmd)
}

func TestHighlightBestSentence(t *testing.T) {
	out := highlightBestSentence("Pears are green. Invoices are due in thirty days. Thanks", "when are invoices due")
	assert.True(t, strings.HasPrefix(out, "Pears are green. "))
	assert.True(t, strings.HasSuffix(out, " Thanks"))
	assert.Contains(t, out, "Invoices are due in thirty days.")

	assert.Equal(t, "Single sentence.", highlightBestSentence(" Single sentence. ", "sentence"))
}
