package decompose

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ametelin/docinsight/internal/core/domain"
)

func (d *Decomposer) decomposePDF(doc *domain.Document, raw []byte) ([]domain.DocumentChunk, []domain.VisualElement, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse pdf %s: %w", doc.Filename, err)
	}

	var chunks []domain.DocumentChunk
	var visuals []domain.VisualElement

	numPages := reader.NumPage()
	for pageIdx := 1; pageIdx <= numPages; pageIdx++ {
		page := reader.Page(pageIdx)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page must not sink the document.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pageNumber := pageIdx - 1

		for _, part := range d.splitter.Split(text) {
			chunks = append(chunks, domain.DocumentChunk{
				Content:     part,
				ContentType: domain.ContentText,
				PageNumber:  pageNumber,
			})
		}

		visualChunks, visualElements := syntheticVisualsFromCaptions(doc.ID, pageNumber, text)
		chunks = append(chunks, visualChunks...)
		visuals = append(visuals, visualElements...)
	}

	return chunks, visuals, nil
}
