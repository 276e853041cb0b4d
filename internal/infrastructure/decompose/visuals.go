package decompose

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// captionKinds maps recognized caption prefixes to visual element kinds.
var captionKinds = map[string]string{
	"figure":  "figure",
	"fig.":    "figure",
	"chart":   "chart",
	"graph":   "chart",
	"table":   "table",
	"diagram": "diagram",
}

const maxCaptionLen = 200

// syntheticVisualsFromCaptions scans page text for caption lines like
// "Figure 3: revenue trend" and emits a searchable visual proxy chunk plus
// a registry entry for each one found.
func syntheticVisualsFromCaptions(documentID string, pageNumber int, pageText string) ([]domain.DocumentChunk, []domain.VisualElement) {
	var chunks []domain.DocumentChunk
	var visuals []domain.VisualElement

	for _, line := range strings.Split(pageText, "\n") {
		caption := strings.TrimSpace(line)
		if caption == "" {
			continue
		}
		kind, ok := captionKind(caption)
		if !ok {
			continue
		}
		if len([]rune(caption)) > maxCaptionLen {
			caption = string([]rune(caption)[:maxCaptionLen])
		}

		id := uuid.NewString()
		visuals = append(visuals, domain.VisualElement{
			ID:          id,
			DocumentID:  documentID,
			Kind:        kind,
			PageNumber:  pageNumber,
			Description: caption,
			CreatedAt:   time.Now().UTC(),
		})
		chunks = append(chunks, domain.DocumentChunk{
			Content:     caption,
			ContentType: domain.ContentVisual,
			PageNumber:  pageNumber,
			VisualRef:   id,
		})
	}

	return chunks, visuals
}

func captionKind(line string) (string, bool) {
	lower := strings.ToLower(line)
	for prefix, kind := range captionKinds {
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := lower[len(prefix):]
		// Require a caption shape ("Figure 3:", "Table 1.") to avoid
		// treating prose that starts with these words as a visual.
		if len(rest) == 0 {
			return "", false
		}
		rest = strings.TrimLeft(rest, " ")
		if len(rest) == 0 || rest[0] < '0' || rest[0] > '9' {
			return "", false
		}
		return kind, true
	}
	return "", false
}
