package decompose

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

// Decomposer turns a stored document into text chunks and synthetic visual
// proxies. The format is picked by file extension with the mime type as a
// fallback; unknown formats go through the plain text path.
type Decomposer struct {
	storage  ports.ObjectStorage
	splitter *Splitter
}

func New(storage ports.ObjectStorage, chunkSize, overlap int) *Decomposer {
	return &Decomposer{
		storage:  storage,
		splitter: NewSplitter(chunkSize, overlap),
	}
}

func (d *Decomposer) Decompose(ctx context.Context, doc *domain.Document) ([]domain.DocumentChunk, []domain.VisualElement, error) {
	reader, err := d.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("read source document: %w", err)
	}

	switch format(doc) {
	case "pdf":
		return d.decomposePDF(doc, raw)
	case "spreadsheet":
		return d.decomposeSpreadsheet(doc, raw)
	default:
		return d.decomposePlainText(doc, raw)
	}
}

func format(doc *domain.Document) string {
	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return "pdf"
	case ".xlsx", ".xlsm":
		return "spreadsheet"
	}
	switch doc.MimeType {
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "spreadsheet"
	}
	return "text"
}
