// Package chunker splits extracted text into overlapping chunks.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"docchat/internal/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparator is the preferred split point between pieces of text.
const DefaultSeparator = "\n"

// CharacterChunker splits text on a separator and greedily packs the pieces
// into windows of at most chunkSize characters, carrying up to overlap
// characters of trailing pieces into the next window. Lengths are counted in
// Unicode code points.
type CharacterChunker struct {
	chunkSize int
	overlap   int
	separator string
}

// Option configures the character chunker.
type Option func(*CharacterChunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *CharacterChunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *CharacterChunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithSeparator sets the separator pieces are split on.
func WithSeparator(sep string) Option {
	return func(c *CharacterChunker) {
		c.separator = sep
	}
}

// NewCharacterChunker creates a chunker. The overlap must be smaller than the chunk size.
func NewCharacterChunker(opts ...Option) (*CharacterChunker, error) {
	c := &CharacterChunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		separator: DefaultSeparator,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidInput, c.overlap, c.chunkSize)
	}
	return c, nil
}

// Chunk splits text into ordered chunks. Empty or whitespace-only text yields no chunks.
func (c *CharacterChunker) Chunk(text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	pieces := c.split(text)
	texts := c.merge(pieces)

	chunks := make([]domain.Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:    uuid.New().String(),
			Text:  t,
			Index: i,
		})
	}
	return chunks, nil
}

// split breaks text on the separator and hard-splits any piece longer than
// the chunk size into windows stepping chunkSize-overlap.
func (c *CharacterChunker) split(text string) []string {
	var raw []string
	if c.separator == "" {
		raw = []string{text}
	} else {
		raw = strings.Split(text, c.separator)
	}
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) <= c.chunkSize {
			out = append(out, p)
			continue
		}
		out = append(out, c.window(p)...)
	}
	return out
}

func (c *CharacterChunker) window(piece string) []string {
	runes := []rune(piece)
	step := c.chunkSize - c.overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

func (c *CharacterChunker) merge(pieces []string) []string {
	sepLen := utf8.RuneCountInString(c.separator)
	var (
		out     []string
		current []string
		lengths []int
		total   int
	)
	joinedLen := func(extra int) int {
		if len(current) == 0 {
			return extra
		}
		return total + sepLen + extra
	}
	for _, p := range pieces {
		l := utf8.RuneCountInString(p)
		if len(current) > 0 && joinedLen(l) > c.chunkSize {
			if doc := strings.TrimSpace(strings.Join(current, c.separator)); doc != "" {
				out = append(out, doc)
			}
			for len(current) > 0 && (total > c.overlap || joinedLen(l) > c.chunkSize) {
				total -= lengths[0]
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
				lengths = lengths[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, p)
		lengths = append(lengths, l)
		total += l
	}
	if doc := strings.TrimSpace(strings.Join(current, c.separator)); doc != "" {
		out = append(out, doc)
	}
	return out
}
