package domain

import "context"

// Media types accepted by the upload surface.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document is a single uploaded file. It is consumed once by extraction.
type Document struct {
	Name      string
	MediaType string
	Content   []byte
}

// Chunk is a bounded-length slice of the extracted text used as the unit of retrieval.
type Chunk struct {
	ID    string
	Text  string
	Index int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Speaker identifies who produced a dialogue turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one entry of a session's dialogue state.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Message string  `json:"message"`
}

// Message is a chat-completion message. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Extractor pulls raw text out of a single document.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (string, error)
}

// Chunker splits raw text into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(text string) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)
	Clear(ctx context.Context) error
}

// ChatModel produces a completion for a list of chat messages.
// Failures are reported as *ProviderError.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
