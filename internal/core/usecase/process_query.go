package usecase

import (
	"context"
	"log/slog"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

// ProcessQueryUseCase chains the query pipeline: analyze, select template,
// retrieve, synthesize. Each invocation is stateless; the only shared state
// is the read-only template table and the injected capabilities, so
// concurrent queries need no coordination.
type ProcessQueryUseCase struct {
	analyzer    *QueryAnalyzer
	templates   map[string]domain.ResponseTemplate
	retriever   *RetrievalCoordinator
	synthesizer *ResponseSynthesizer
	documents   ports.DocumentReader
	log         *slog.Logger
}

func NewProcessQueryUseCase(
	analyzer *QueryAnalyzer,
	templates map[string]domain.ResponseTemplate,
	retriever *RetrievalCoordinator,
	synthesizer *ResponseSynthesizer,
	documents ports.DocumentReader,
	log *slog.Logger,
) *ProcessQueryUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessQueryUseCase{
		analyzer:    analyzer,
		templates:   templates,
		retriever:   retriever,
		synthesizer: synthesizer,
		documents:   documents,
		log:         log,
	}
}

// ProcessQuery is the single core-exposed operation. A hard generation
// failure still returns a valid error-typed response; the error return is
// reserved for caller cancellation.
func (uc *ProcessQueryUseCase) ProcessQuery(
	ctx context.Context,
	query, documentID string,
	history []domain.ConversationTurn,
) (*domain.GeneratedResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := uc.analyzer.Analyze(query, history)
	template := ResolveTemplate(uc.templates, analysis.TemplateID)

	filter := domain.SearchFilter{DocumentID: documentID}
	documentName := uc.documentName(ctx, documentID)

	retrieval := uc.retriever.Retrieve(ctx, query, analysis, filter)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	response := uc.synthesizer.Synthesize(ctx, query, analysis, template, retrieval, documentName)

	uc.log.Info("query_processed",
		"intent", analysis.Intent.String(),
		"template", template.Name,
		"reranked", retrieval.Stats.TotalReranked,
		"confidence", response.ConfidenceScore,
		"response_type", response.ResponseType,
	)
	return response, nil
}

// documentName resolves the display name for prompt context. A registry
// miss is not fatal: the query proceeds unscoped by name.
func (uc *ProcessQueryUseCase) documentName(ctx context.Context, documentID string) string {
	if documentID == "" || uc.documents == nil {
		return ""
	}
	doc, err := uc.documents.GetByID(ctx, documentID)
	if err != nil {
		uc.log.Warn("document_lookup_failed", "document_id", documentID, "error", err)
		return ""
	}
	return doc.Filename
}
