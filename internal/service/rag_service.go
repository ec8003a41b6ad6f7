// Package service runs the document chat pipeline for a session: extract,
// chunk, index, then answer questions against the index.
package service

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/extractor"
	"docchat/internal/index"
	"docchat/internal/logger"
	"docchat/internal/retriever"
	"docchat/internal/session"
)

// Reprocess modes for a session that already has an index.
const (
	ReprocessReplace = "replace"
	ReprocessMerge   = "merge"
)

// ProcessReport describes one processing run.
type ProcessReport struct {
	Accepted []string
	Skipped  []string
	Errors   []extractor.FileError
	Chunks   int
	Merged   bool
	Summary  string
}

// Deps are the collaborators of RAGService.
type Deps struct {
	Extractor        *extractor.Extractor
	Chunker          domain.Chunker
	Builder          *index.Builder
	Retriever        *retriever.Retriever
	Summarizer       domain.Summarizer
	SummarySentences int
	OnReprocess      string
	Log              *logger.Logger
}

type RAGService struct {
	extractor        *extractor.Extractor
	chunker          domain.Chunker
	builder          *index.Builder
	retriever        *retriever.Retriever
	summarizer       domain.Summarizer
	summarySentences int
	onReprocess      string
	log              *logger.Logger
}

func NewRAGService(d Deps) *RAGService {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.OnReprocess == "" {
		d.OnReprocess = ReprocessMerge
	}
	return &RAGService{
		extractor:        d.Extractor,
		chunker:          d.Chunker,
		builder:          d.Builder,
		retriever:        d.Retriever,
		summarizer:       d.Summarizer,
		summarySentences: d.SummarySentences,
		onReprocess:      d.OnReprocess,
		log:              d.Log,
	}
}

// Process extracts text from docs and builds a new index for sess. The report
// is returned even when err is non-nil so callers can show per-file errors.
// On any error the session keeps its previous index.
func (s *RAGService) Process(ctx context.Context, sess *session.Session, docs []domain.Document) (*ProcessReport, error) {
	sess.Lock()
	defer sess.Unlock()

	report := &ProcessReport{}
	if sess.Ended() {
		return report, domain.ErrSessionNotFound
	}
	if len(docs) == 0 {
		return report, domain.ErrNoDocuments
	}
	log := s.log.With("session", sess.ID)

	res := s.extractor.ExtractAll(ctx, docs)
	report.Accepted = res.Accepted
	report.Skipped = res.Skipped
	report.Errors = res.Errors
	if strings.TrimSpace(res.Text) == "" {
		log.Info("no text extracted", "files", len(docs), "errors", len(res.Errors))
		return report, domain.ErrNoText
	}

	chunks, err := s.chunker.Chunk(res.Text)
	if err != nil {
		return report, fmt.Errorf("chunk text: %w", err)
	}
	if len(chunks) == 0 {
		return report, domain.ErrNoText
	}

	prev := sess.Index()
	if prev != nil && s.onReprocess == ReprocessMerge {
		chunks = mergeChunks(prev.Chunks(), chunks)
		report.Merged = true
	}

	idx, err := s.builder.Build(ctx, chunks)
	if err != nil {
		log.Warn("index build failed", "chunks", len(chunks), "error", err)
		return report, err
	}
	if old := sess.SetIndex(idx); old != nil {
		if err := old.Close(ctx); err != nil {
			log.Warn("release previous index failed", "error", err)
		}
	}
	report.Chunks = idx.Len()

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(res.Text, s.summarySentences)
		if err != nil {
			log.Warn("summarize failed", "error", err)
		}
		report.Summary = summary
	}
	log.Info("documents processed", "accepted", len(report.Accepted), "skipped", len(report.Skipped),
		"failed", len(report.Errors), "chunks", report.Chunks, "merged", report.Merged)
	return report, nil
}

// Ask answers question in sess and returns the updated dialogue. On error the
// dialogue is left unchanged.
func (s *RAGService) Ask(ctx context.Context, sess *session.Session, question string) ([]domain.Turn, error) {
	sess.Lock()
	defer sess.Unlock()
	if sess.Ended() {
		return nil, domain.ErrSessionNotFound
	}

	idx := sess.Index()
	if idx == nil {
		return nil, domain.ErrNotInitialized
	}
	ans, err := s.retriever.Answer(ctx, idx, sess.History(), question)
	if err != nil {
		s.log.Warn("question failed", "session", sess.ID, "rate_limited", domain.IsRateLimited(err), "error", err)
		return nil, err
	}
	return sess.AppendTurns(
		domain.Turn{Speaker: domain.SpeakerUser, Message: question},
		domain.Turn{Speaker: domain.SpeakerAssistant, Message: ans.Text},
	), nil
}

// mergeChunks appends next after prev, renumbering next to follow on.
func mergeChunks(prev, next []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(prev)+len(next))
	out = append(out, prev...)
	for i, c := range next {
		c.Index = len(prev) + i
		out = append(out, c)
	}
	return out
}
