package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"docchat/internal/domain"
	"docchat/internal/extractor"
)

// readDocuments loads the files named by args, expanding glob patterns. The
// media type comes from the extension; unknown extensions are passed through
// with an empty type so the pipeline reports them as skipped.
func readDocuments(args []string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, p := range args {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			docs = append(docs, domain.Document{
				Name:      filepath.Base(m),
				MediaType: extractor.MediaTypeForPath(m),
				Content:   data,
			})
		}
	}
	return docs, nil
}
