package decompose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// pageSizeChars approximates one printed page of plain text. Plain text has
// no real pages, so the pipeline fakes them for context expansion.
const pageSizeChars = 3000

func (d *Decomposer) decomposePlainText(doc *domain.Document, raw []byte) ([]domain.DocumentChunk, []domain.VisualElement, error) {
	if !utf8.Valid(raw) {
		return nil, nil, fmt.Errorf("unsupported binary format: %s", doc.Filename)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil, nil
	}

	var chunks []domain.DocumentChunk
	var visuals []domain.VisualElement

	runes := []rune(text)
	for pageNumber := 0; pageNumber*pageSizeChars < len(runes); pageNumber++ {
		start := pageNumber * pageSizeChars
		end := start + pageSizeChars
		if end > len(runes) {
			end = len(runes)
		}
		pageText := string(runes[start:end])

		for _, part := range d.splitter.Split(pageText) {
			chunks = append(chunks, domain.DocumentChunk{
				Content:     part,
				ContentType: domain.ContentText,
				PageNumber:  pageNumber,
			})
		}

		visualChunks, visualElements := syntheticVisualsFromCaptions(doc.ID, pageNumber, pageText)
		chunks = append(chunks, visualChunks...)
		visuals = append(visuals, visualElements...)
	}

	return chunks, visuals, nil
}
