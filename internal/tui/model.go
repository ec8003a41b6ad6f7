// Package tui is the terminal chat front end.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docchat/internal/domain"
	"docchat/internal/service"
	"docchat/internal/session"
)

// ChatPort is the TUI-facing subset of the RAG service.
type ChatPort interface {
	Process(ctx context.Context, sess *session.Session, docs []domain.Document) (*service.ProcessReport, error)
	Ask(ctx context.Context, sess *session.Session, question string) ([]domain.Turn, error)
}

type processedMsg struct {
	report *service.ProcessReport
	err    error
}

type answeredMsg struct {
	question string
	turns    []domain.Turn
	err      error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx      context.Context
	service  ChatPort
	session  *session.Session
	docs     []domain.Document
	input    textinput.Model
	viewport viewport.Model
	turns    []domain.Turn
	summary  string
	status   string
	notes    []string
	busy     bool
	ready    bool
	lastAsk  string
}

// New creates a chat model that processes docs on start.
func New(ctx context.Context, svc ChatPort, sess *session.Session, docs []domain.Document) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  svc,
		session:  sess,
		docs:     docs,
		input:    ti,
		viewport: vp,
		status:   "Processing files...",
		busy:     true,
	}
}

// Init starts processing and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.processCmd())
}

func (m Model) processCmd() tea.Cmd {
	return func() tea.Msg {
		report, err := m.service.Process(m.ctx, m.session, m.docs)
		return processedMsg{report: report, err: err}
	}
}

func (m Model) askCmd(q string) tea.Cmd {
	return func() tea.Msg {
		turns, err := m.service.Ask(m.ctx, m.session, q)
		return answeredMsg{question: q, turns: turns, err: err}
	}
}

// Update handles key, window and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil
	case processedMsg:
		m.busy = false
		m.notes = service.ReportLines(msg.report)
		if msg.err != nil {
			m.status = service.UserMessage(msg.err)
		} else {
			m.summary = msg.report.Summary
			m.status = "Ready. Ask a question."
		}
		m.refresh()
		return m, nil
	case answeredMsg:
		m.busy = false
		if msg.err != nil {
			m.status = service.UserMessage(msg.err)
			m.input.SetValue(msg.question)
			return m, nil
		}
		m.turns = msg.turns
		m.lastAsk = msg.question
		m.status = fmt.Sprintf("Answered %q", msg.question)
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, m.askCmd(q)
		case "ctrl+r":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Processing files..."
			return m, m.processCmd()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the conversation.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Chat with multiple PDFs & Excel")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	statusStyle := okStyle
	if !m.busy && m.session != nil && !m.session.Ready() {
		statusStyle = errStyle
	}
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for _, n := range m.notes {
		b.WriteString(noteStyle.Render(n))
		b.WriteString("\n")
	}
	if len(m.turns) == 0 {
		if b.Len() == 0 {
			return "No messages yet."
		}
		return b.String()
	}
	width := max(20, m.viewport.Width-4)
	var question string
	for _, t := range m.turns {
		if t.Speaker == domain.SpeakerUser {
			question = t.Message
			b.WriteString(userBubbleStyle.Width(width).Render("You: " + t.Message))
		} else {
			b.WriteString(botBubbleStyle.Width(width).Render("AI: " + highlightBestSentence(t.Message, question)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userBubbleStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#2b313e")).Foreground(lipgloss.Color("15")).Padding(0, 1)
	botBubbleStyle     = lipgloss.NewStyle().Background(lipgloss.Color("#475063")).Foreground(lipgloss.Color("15")).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	noteStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	okStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unicodeWordRe      = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe         = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// highlightBestSentence emphasises the answer sentence sharing the most
// words with the question.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if locs := sentenceRe.FindAllStringIndex(text, -1); len(locs) > 0 {
		if rest := strings.TrimSpace(text[locs[len(locs)-1][1]:]); rest != "" {
			sentences = append(sentences, rest)
		}
	}
	if len(sentences) < 2 {
		return strings.TrimSpace(text)
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.TrimSpace(text)
	}
	bestIdx, bestScore := 0, 0
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if bestScore > 0 && i == bestIdx {
			sent = highlightStyle.Render(sent)
		}
		sentences[i] = sent
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range unicodeWordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
