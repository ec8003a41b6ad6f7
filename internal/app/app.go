// Package app assembles the pipeline components selected by configuration.
package app

import (
	"fmt"
	"os"
	"time"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	embopenai "docchat/internal/embedding/openai"
	"docchat/internal/embedding/tfidf"
	"docchat/internal/extractor"
	"docchat/internal/index"
	llmopenai "docchat/internal/llm/openai"
	"docchat/internal/logger"
	"docchat/internal/retriever"
	"docchat/internal/service"
	"docchat/internal/session"
	"docchat/internal/summarizer"
	"docchat/internal/vectorstore"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/qdrant"
)

// App is the assembled application.
type App struct {
	Config   *config.AppConfig
	Log      *logger.Logger
	Service  *service.RAGService
	Sessions *session.Manager
}

// Build wires every component from cfg.
func Build(cfg *config.AppConfig, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	ch, err := newChunker(cfg.Chunker)
	if err != nil {
		return nil, err
	}
	embed, batch, concurrency, err := newEmbedderFactory(cfg.Embedder)
	if err != nil {
		return nil, err
	}
	stores, err := newStoreFactory(cfg.VectorStore)
	if err != nil {
		return nil, err
	}
	chat, err := newChatModel(cfg.LLM)
	if err != nil {
		return nil, err
	}
	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	svc := service.NewRAGService(service.Deps{
		Extractor: extractor.New(log.With("component", "extractor")),
		Chunker:   ch,
		Builder: index.NewBuilder(embed, stores,
			index.WithBatching(batch, concurrency),
			index.WithLogger(log.With("component", "index"))),
		Retriever: retriever.New(chat,
			retriever.WithTopK(cfg.Retriever.TopK),
			retriever.WithCondense(cfg.Retriever.Condense()),
			retriever.WithLogger(log.With("component", "retriever"))),
		Summarizer:       sum,
		SummarySentences: cfg.Summarizer.MaxSentences,
		OnReprocess:      cfg.Index.OnReprocess,
		Log:              log.With("component", "service"),
	})
	log.Debug("components assembled",
		"chunker", cfg.Chunker.Type, "embedder", cfg.Embedder.Type,
		"vector_store", cfg.VectorStore.Type, "llm", cfg.LLM.Type,
		"on_reprocess", cfg.Index.OnReprocess)

	return &App{Config: cfg, Log: log, Service: svc, Sessions: session.NewManager(log.With("component", "sessions"))}, nil
}

func newChunker(cfg config.ChunkerConfig) (domain.Chunker, error) {
	switch cfg.Type {
	case "character", "":
		return chunker.NewCharacterChunker(
			chunker.WithChunkSize(cfg.ChunkSize),
			chunker.WithOverlap(cfg.ChunkOverlap),
			chunker.WithSeparator(cfg.Separator),
		)
	case "sentence":
		return chunker.NewSentenceChunker(cfg.SentencesPerChunk, cfg.OverlapSentences), nil
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Type)
	}
}

func newEmbedderFactory(cfg config.EmbedderConfig) (index.EmbedderFactory, int, int, error) {
	switch cfg.Type {
	case "tfidf":
		return func() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }, 0, 1, nil
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, 0, 0, fmt.Errorf("openai embedder config missing")
		}
		client, err := embopenai.NewClient(embopenai.Config{
			BaseURL:           cfg.OpenAI.BaseURL,
			APIKeyEnv:         cfg.OpenAI.APIKeyEnv,
			Model:             cfg.OpenAI.Model,
			Timeout:           time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		})
		if err != nil {
			return nil, 0, 0, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return func() (domain.Embedder, error) { return client, nil }, cfg.OpenAI.BatchSize, cfg.OpenAI.Concurrency, nil
	default:
		return nil, 0, 0, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newStoreFactory(cfg config.VectorStoreConfig) (vectorstore.Factory, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.Factory(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.Factory(qdrant.Config{
			URL:              cfg.Qdrant.URL,
			APIKey:           os.Getenv(cfg.Qdrant.APIKeyEnv),
			CollectionPrefix: cfg.Qdrant.CollectionPrefix,
			Timeout:          time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}

func newChatModel(cfg config.LLMConfig) (domain.ChatModel, error) {
	switch cfg.Type {
	case "openai", "":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai llm config missing")
		}
		client, err := llmopenai.NewClient(llmopenai.Config{
			BaseURL:           cfg.OpenAI.BaseURL,
			APIKeyEnv:         cfg.OpenAI.APIKeyEnv,
			Model:             cfg.OpenAI.Model,
			Temperature:       cfg.OpenAI.Temperature,
			Timeout:           time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("openai llm init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm: %s", cfg.Type)
	}
}
