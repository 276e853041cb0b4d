package ports

import (
	"context"
	"io"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// SimilaritySearcher is the external vector-search capability. Search must
// be idempotent and side-effect free; results come back ranked by
// similarity descending.
type SimilaritySearcher interface {
	Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) ([]domain.Candidate, error)
}

// AnswerGenerator is the external generation capability: one prompt in,
// one text out. Failures surface as errors, never as silent empty output.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder builds vectors for chunk batches and single query strings.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndexer publishes one document's chunks as a single batch. The
// batch must be fully visible to Search before IndexBatch returns.
type VectorIndexer interface {
	IndexBatch(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error
}

// DocumentRepository persists and reads document registry state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveCounts(ctx context.Context, id string, pages, chunks, visuals int) error
}

// VisualRepository is the read-mostly registry of extracted visual elements.
// The query pipeline only ever reads it.
type VisualRepository interface {
	SaveAll(ctx context.Context, visuals []domain.VisualElement) error
	GetByID(ctx context.Context, id string) (*domain.VisualElement, error)
}

// ObjectStorage stores source documents and extracted visual assets.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// DocumentDecomposer splits a stored document into text chunks and visual
// elements with page attribution.
type DocumentDecomposer interface {
	Decompose(ctx context.Context, doc *domain.Document) ([]domain.DocumentChunk, []domain.VisualElement, error)
}
