package ports

import (
	"context"
	"io"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// QueryService is the inbound contract of the query pipeline. ProcessQuery
// always returns a usable GeneratedResponse; hard failures come back as an
// error-typed response value, not as an error.
type QueryService interface {
	ProcessQuery(ctx context.Context, query, documentID string, history []domain.ConversationTurn) (*domain.GeneratedResponse, error)
}

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
