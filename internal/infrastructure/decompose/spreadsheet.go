package decompose

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// sampleRows bounds the part of a sheet embedded into its visual proxy.
// The proxy only needs enough content to be findable by similarity search.
const sampleRows = 20

// decomposeSpreadsheet maps each sheet to one page. Every non-empty sheet
// becomes a synthetic table visual plus plain text chunks of its rows.
func (d *Decomposer) decomposeSpreadsheet(doc *domain.Document, raw []byte) ([]domain.DocumentChunk, []domain.VisualElement, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("parse spreadsheet %s: %w", doc.Filename, err)
	}
	defer book.Close()

	var chunks []domain.DocumentChunk
	var visuals []domain.VisualElement

	for pageNumber, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		rendered := renderRows(rows)
		if rendered == "" {
			continue
		}

		visualID := uuid.NewString()
		visuals = append(visuals, domain.VisualElement{
			ID:          visualID,
			DocumentID:  doc.ID,
			Kind:        "table",
			PageNumber:  pageNumber,
			Description: fmt.Sprintf("table: sheet %q (%d rows)", sheet, len(rows)),
			CreatedAt:   time.Now().UTC(),
		})
		chunks = append(chunks, domain.DocumentChunk{
			Content:     tableProxy(sheet, rows),
			ContentType: domain.ContentVisual,
			PageNumber:  pageNumber,
			VisualRef:   visualID,
		})

		for _, part := range d.splitter.Split(rendered) {
			chunks = append(chunks, domain.DocumentChunk{
				Content:     part,
				ContentType: domain.ContentText,
				PageNumber:  pageNumber,
			})
		}
	}

	return chunks, visuals, nil
}

func renderRows(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		line := strings.TrimSpace(strings.Join(row, " | "))
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func tableProxy(sheet string, rows [][]string) string {
	limit := len(rows)
	if limit > sampleRows {
		limit = sampleRows
	}
	var b strings.Builder
	fmt.Fprintf(&b, "table: sheet %q\n", sheet)
	b.WriteString(renderRows(rows[:limit]))
	return strings.TrimSpace(b.String())
}
