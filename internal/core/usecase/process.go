package usecase

import (
	"context"
	"fmt"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

// ProcessDocumentUseCase drives the ingestion pipeline: decompose the stored
// file into text chunks and synthetic visual proxies, embed everything, and
// publish the whole batch to the vector index before marking the document
// ready. Queries only ever observe fully-published batches.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	decomposer ports.DocumentDecomposer
	embedder   ports.Embedder
	indexer    ports.VectorIndexer
	visuals    ports.VisualRepository
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	decomposer ports.DocumentDecomposer,
	embedder ports.Embedder,
	indexer ports.VectorIndexer,
	visuals ports.VisualRepository,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		decomposer: decomposer,
		embedder:   embedder,
		indexer:    indexer,
		visuals:    visuals,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	chunks, visuals, err := uc.decomposer.Decompose(ctx, doc)
	if err != nil {
		return fmt.Errorf("decompose document: %w", err)
	}
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "decompose document", fmt.Errorf("no extractable content in %s", doc.Filename))
	}

	if len(visuals) > 0 {
		if err := uc.visuals.SaveAll(ctx, visuals); err != nil {
			return fmt.Errorf("save visual registry: %w", err)
		}
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	// Single waited batch: the index call must not return until the whole
	// batch is searchable, so status=ready can gate visibility.
	if err := uc.indexer.IndexBatch(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}

	pages := distinctPages(chunks)
	if err := uc.repo.SaveCounts(ctx, doc.ID, pages, len(chunks), len(visuals)); err != nil {
		return fmt.Errorf("save document counts: %w", err)
	}
	return nil
}

func distinctPages(chunks []domain.DocumentChunk) int {
	pages := make(map[int]struct{}, 8)
	for _, chunk := range chunks {
		pages[chunk.PageNumber] = struct{}{}
	}
	return len(pages)
}
