// Package extractor pulls raw text out of uploaded documents.
//
// Extraction is dispatched on the declared media type. Documents with an
// unrecognised type are skipped; a failure in one document never stops the
// rest of the batch.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/logger"
)

// FileError records a per-document extraction failure.
type FileError struct {
	Name      string
	MediaType string
	Err       error
}

func (e FileError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }

// Result is the outcome of extracting a batch of documents.
type Result struct {
	Text     string
	Accepted []string
	Skipped  []string
	Errors   []FileError
}

var _ domain.Extractor = (*Extractor)(nil)

// Extractor dispatches documents to per-media-type extractors.
type Extractor struct {
	byType map[string]domain.Extractor
	log    *logger.Logger
}

// New returns an extractor handling PDF and XLSX documents.
func New(log *logger.Logger) *Extractor {
	return NewWith(log, map[string]domain.Extractor{
		domain.MediaTypePDF:  PDFExtractor{},
		domain.MediaTypeXLSX: XLSXExtractor{},
	})
}

// NewWith returns an extractor using the given media type table.
func NewWith(log *logger.Logger, byType map[string]domain.Extractor) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{byType: byType, log: log}
}

// Supports reports whether a media type has a registered extractor.
func (e *Extractor) Supports(mediaType string) bool {
	_, ok := e.byType[normalizeMediaType(mediaType)]
	return ok
}

// Extract returns the text of a single document, or domain.ErrUnsupportedType
// when no extractor handles its media type.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (string, error) {
	ex, ok := e.byType[normalizeMediaType(doc.MediaType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedType, doc.MediaType)
	}
	return ex.Extract(ctx, doc)
}

// ExtractAll concatenates the text of every supported document.
func (e *Extractor) ExtractAll(ctx context.Context, docs []domain.Document) Result {
	var (
		res Result
		b   strings.Builder
	)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, FileError{Name: doc.Name, MediaType: doc.MediaType, Err: err})
			continue
		}
		text, err := e.Extract(ctx, doc)
		if errors.Is(err, domain.ErrUnsupportedType) {
			e.log.Debug("skipping document with unsupported media type", "name", doc.Name, "media_type", doc.MediaType)
			res.Skipped = append(res.Skipped, doc.Name)
			continue
		}
		if err != nil {
			e.log.Warn("document extraction failed", "name", doc.Name, "media_type", doc.MediaType, "error", err)
			res.Errors = append(res.Errors, FileError{Name: doc.Name, MediaType: doc.MediaType, Err: err})
			continue
		}
		e.log.Debug("document extracted", "name", doc.Name, "chars", len(text))
		res.Accepted = append(res.Accepted, doc.Name)
		b.WriteString(text)
	}
	res.Text = b.String()
	return res
}

// MediaTypeForPath maps a file extension to one of the supported media types.
// Unknown extensions return an empty string.
func MediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.MediaTypePDF
	case ".xlsx":
		return domain.MediaTypeXLSX
	default:
		return ""
	}
}

func normalizeMediaType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}
