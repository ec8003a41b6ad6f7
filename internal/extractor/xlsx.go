package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docchat/internal/domain"
)

// XLSXExtractor walks every sheet, row and cell, emitting each non-empty
// cell followed by a single space.
type XLSXExtractor struct{}

func (XLSXExtractor) Extract(ctx context.Context, doc domain.Document) (string, error) {
	if len(doc.Content) == 0 {
		return "", fmt.Errorf("%w: empty spreadsheet", domain.ErrInvalidInput)
	}
	f, err := excelize.OpenReader(bytes.NewReader(doc.Content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			for _, cell := range row {
				if cell == "" {
					continue
				}
				b.WriteString(cell)
				b.WriteString(" ")
			}
		}
	}
	return b.String(), nil
}
