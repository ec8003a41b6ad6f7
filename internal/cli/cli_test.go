package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/app"
	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding/tfidf"
	"docchat/internal/extractor"
	"docchat/internal/index"
	"docchat/internal/logger"
	"docchat/internal/retriever"
	"docchat/internal/service"
	"docchat/internal/session"
	"docchat/internal/vectorstore/memory"
)

type textExtractor struct{}

func (textExtractor) Extract(_ context.Context, doc domain.Document) (string, error) {
	return string(doc.Content), nil
}

type echoChat struct{}

func (echoChat) Complete(_ context.Context, msgs []domain.Message) (string, error) {
	return "echo: " + msgs[len(msgs)-1].Content, nil
}

func setupTestApp(t *testing.T) {
	t.Helper()
	prev := buildApp
	buildApp = func(cfg *config.AppConfig, log *logger.Logger) (*app.App, error) {
		ch, err := chunker.NewCharacterChunker()
		if err != nil {
			return nil, err
		}
		svc := service.NewRAGService(service.Deps{
			Extractor: extractor.NewWith(nil, map[string]domain.Extractor{domain.MediaTypePDF: textExtractor{}}),
			Chunker:   ch,
			Builder:   index.NewBuilder(func() (domain.Embedder, error) { return tfidf.NewEmbedder(), nil }, memory.Factory()),
			Retriever: retriever.New(echoChat{}, retriever.WithCondense(false)),
		})
		return &app.App{Config: cfg, Log: logger.Nop(), Service: svc, Sessions: session.NewManager(nil)}, nil
	}
	t.Cleanup(func() {
		buildApp = prev
		askQuestions = nil
		if f := askCmd.Flags().Lookup("question"); f != nil {
			f.Changed = false
		}
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Save(p, config.Default()))
	return p
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	f := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "v", f.Shorthand)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["chat"])
	assert.True(t, names["ask"])
}

func TestChatCmd_RequiresFiles(t *testing.T) {
	setupTestApp(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"chat"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_AnswersQuestions(t *testing.T) {
	setupTestApp(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "invoices.pdf", "Invoices are due within thirty days.")
	notes := writeFile(t, dir, "notes.txt", "ignored")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "--config", writeConfig(t, dir),
		"-q", "When are invoices due?", doc, notes})

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "Skipped unsupported files: notes.txt")
	assert.Contains(t, out, "You: When are invoices due?")
	assert.Contains(t, out, "AI: echo: When are invoices due?")
}

func TestAskCmd_NoTextReportsMessage(t *testing.T) {
	setupTestApp(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "blank.pdf", "   ")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "--config", writeConfig(t, dir), "-q", "anything", doc})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, service.MsgNoText, err.Error())
}

func TestAskCmd_MissingConfigFile(t *testing.T) {
	setupTestApp(t)
	dir := t.TempDir()
	doc := writeFile(t, dir, "invoices.pdf", "Invoices are due within thirty days.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "--config", filepath.Join(dir, "typo.yaml"), "-q", "anything", doc})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, err.Error(), "typo.yaml")
}

func TestReadDocuments_Glob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.pdf", "a")
	writeFile(t, dir, "b.xlsx", "b")

	docs, err := readDocuments([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a.pdf", docs[0].Name)
	assert.Equal(t, domain.MediaTypePDF, docs[0].MediaType)
	assert.Equal(t, domain.MediaTypeXLSX, docs[1].MediaType)

	_, err = readDocuments([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}
