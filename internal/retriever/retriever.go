// Package retriever answers questions against an index using a chat model
// and the running dialogue.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/logger"
)

const DefaultTopK = 4

const condensePrompt = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
%s
Follow Up Input: %s
Standalone question:`

const answerPrompt = `Use the following pieces of context to answer the user's question. If you don't know the answer, just say that you don't know, don't try to make up an answer.
----------------
%s`

// Searcher is the part of an index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Text string
	// Standalone is the question used for retrieval; it differs from the
	// asked question only when condensing rewrote it.
	Standalone string
	Sources    []domain.SearchResult
}

type Retriever struct {
	chat     domain.ChatModel
	topK     int
	condense bool
	log      *logger.Logger
}

type Option func(*Retriever)

func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithCondense toggles rewriting follow-ups into standalone questions.
func WithCondense(on bool) Option {
	return func(r *Retriever) { r.condense = on }
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Retriever) { r.log = l }
}

func New(chat domain.ChatModel, opts ...Option) *Retriever {
	r := &Retriever{chat: chat, topK: DefaultTopK, condense: true, log: logger.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Answer retrieves context for question and asks the chat model. history is
// read only. A nil index yields domain.ErrNotInitialized.
func (r *Retriever) Answer(ctx context.Context, idx Searcher, history []domain.Turn, question string) (*Answer, error) {
	if idx == nil {
		return nil, domain.ErrNotInitialized
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	standalone := question
	if r.condense && len(history) > 0 {
		rewritten, err := r.chat.Complete(ctx, []domain.Message{
			{Role: "user", Content: fmt.Sprintf(condensePrompt, formatHistory(history), question)},
		})
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(rewritten); s != "" {
			standalone = s
		}
		r.log.Debug("condensed question", "question", question, "standalone", standalone)
	}

	sources, err := idx.Search(ctx, standalone, r.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	texts := make([]string, len(sources))
	for i, s := range sources {
		texts[i] = s.Chunk.Text
	}
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: "system", Content: fmt.Sprintf(answerPrompt, strings.Join(texts, "\n\n"))})
	for _, t := range history {
		messages = append(messages, domain.Message{Role: string(t.Speaker), Content: t.Message})
	}
	messages = append(messages, domain.Message{Role: "user", Content: standalone})

	text, err := r.chat.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	r.log.Debug("answered question", "sources", len(sources))
	return &Answer{Text: text, Standalone: standalone, Sources: sources}, nil
}

func formatHistory(history []domain.Turn) string {
	var b strings.Builder
	for _, t := range history {
		switch t.Speaker {
		case domain.SpeakerUser:
			b.WriteString("Human: ")
		default:
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Message)
		b.WriteString("\n")
	}
	return b.String()
}
