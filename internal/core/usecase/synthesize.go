package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

const apologyContent = "I apologize, but I encountered an error generating the response. Please try again."

const noEvidenceNote = "No supporting document content was retrieved for this query."

type SynthesisOptions struct {
	TextPreviewChars   int
	VisualPreviewChars int
	SourcePreviewChars int
	TextSectionCap     int
	VisualSectionCap   int
	SourceCap          int
	VisualCap          int
	PromptCandidates   int
}

func (o SynthesisOptions) normalize() SynthesisOptions {
	out := o
	if out.TextPreviewChars <= 0 {
		out.TextPreviewChars = 500
	}
	if out.VisualPreviewChars <= 0 {
		out.VisualPreviewChars = 300
	}
	if out.SourcePreviewChars <= 0 {
		out.SourcePreviewChars = 200
	}
	if out.TextSectionCap <= 0 {
		out.TextSectionCap = 5
	}
	if out.VisualSectionCap <= 0 {
		out.VisualSectionCap = 3
	}
	if out.SourceCap <= 0 {
		out.SourceCap = 3
	}
	if out.VisualCap <= 0 {
		out.VisualCap = 3
	}
	if out.PromptCandidates <= 0 {
		out.PromptCandidates = 5
	}
	return out
}

// ResponseSynthesizer turns a template plus fused evidence into the final
// generated answer. The generation capability is invoked exactly once per
// synthesis; its failure is converted into an error-typed response value.
type ResponseSynthesizer struct {
	generator ports.AnswerGenerator
	visuals   ports.VisualRepository
	log       *slog.Logger
	opts      SynthesisOptions
}

func NewResponseSynthesizer(generator ports.AnswerGenerator, visuals ports.VisualRepository, log *slog.Logger, opts SynthesisOptions) *ResponseSynthesizer {
	if log == nil {
		log = slog.Default()
	}
	return &ResponseSynthesizer{
		generator: generator,
		visuals:   visuals,
		log:       log,
		opts:      opts.normalize(),
	}
}

func (s *ResponseSynthesizer) Synthesize(
	ctx context.Context,
	query string,
	analysis domain.QueryAnalysis,
	template domain.ResponseTemplate,
	retrieval *domain.RetrievalResult,
	documentName string,
) *domain.GeneratedResponse {
	noEvidence := len(retrieval.Reranked) == 0

	systemPrompt := s.buildSystemPrompt(template, documentName, len(retrieval.Visual))
	userPrompt := s.buildUserPrompt(template, query, retrieval.Reranked)

	content, err := s.generator.Generate(ctx, systemPrompt+"\n\n"+userPrompt)
	if err == nil && strings.TrimSpace(content) == "" {
		err = domain.WrapError(domain.ErrGeneration, "synthesize", fmt.Errorf("empty generation output"))
	}
	if err != nil {
		s.log.Error("generation_failed", "error", err, "template", template.Name)
		return &domain.GeneratedResponse{
			Content:         apologyContent,
			Sources:         []domain.SourceRef{},
			Visuals:         []domain.VisualAttachment{},
			ConfidenceScore: 0.0,
			ResponseType:    domain.ResponseTypeError,
			Metadata:        map[string]any{"error": err.Error()},
		}
	}

	return &domain.GeneratedResponse{
		Content:         content,
		Sources:         s.extractSources(retrieval.Reranked),
		Visuals:         s.extractVisuals(ctx, retrieval.Visual),
		ConfidenceScore: s.responseConfidence(analysis, retrieval, len(content), noEvidence),
		ResponseType:    template.ResponseFormat,
		Metadata: map[string]any{
			"query_intent":    analysis.Intent.String(),
			"template_used":   template.Name,
			"retrieval_stats": retrieval.Stats,
			"response_length": len(content),
			"no_evidence":     noEvidence,
		},
	}
}

func (s *ResponseSynthesizer) buildSystemPrompt(template domain.ResponseTemplate, documentName string, visualCount int) string {
	var b strings.Builder
	b.WriteString(template.SystemPrompt)
	if documentName != "" {
		fmt.Fprintf(&b, "\n\nDocument being analyzed: %s", documentName)
	}
	if visualCount > 0 {
		fmt.Fprintf(&b, "\n\nAvailable visuals: %d visual elements", visualCount)
	}
	return b.String()
}

// buildUserPrompt partitions the top reranked candidates into text and
// visual sections with bounded previews and substitutes the template
// placeholders.
func (s *ResponseSynthesizer) buildUserPrompt(template domain.ResponseTemplate, query string, reranked []domain.Candidate) string {
	top := reranked
	if len(top) > s.opts.PromptCandidates {
		top = top[:s.opts.PromptCandidates]
	}

	var textItems, visualItems []domain.Candidate
	for _, c := range top {
		if c.ContentType == domain.ContentVisual {
			visualItems = append(visualItems, c)
		} else {
			textItems = append(textItems, c)
		}
	}

	var sections []string
	if len(textItems) > 0 {
		sections = append(sections, "**Text Content:**")
		for i, item := range textItems {
			if i >= s.opts.TextSectionCap {
				break
			}
			sections = append(sections, fmt.Sprintf("%d. %s", i+1, truncateContent(item.Content, s.opts.TextPreviewChars)))
		}
	}
	if len(visualItems) > 0 && template.IncludeVisuals {
		sections = append(sections, "\n**Visual Content:**")
		for i, item := range visualItems {
			if i >= s.opts.VisualSectionCap {
				break
			}
			sections = append(sections, fmt.Sprintf("%d. %s", i+1, truncateContent(item.Content, s.opts.VisualPreviewChars)))
		}
	}
	if len(sections) == 0 {
		sections = append(sections, noEvidenceNote)
	}

	replacer := strings.NewReplacer(
		"{query}", query,
		"{content}", strings.Join(sections, "\n"),
		"{analysis_depth}", string(template.AnalysisDepth),
	)
	return replacer.Replace(template.UserPromptPattern)
}

// responseConfidence applies the retrieval-quality, length and visual
// boosts on top of the classification confidence. With no evidence the
// boosts are skipped and the result is capped so a hallucination-prone
// answer never reports high confidence.
func (s *ResponseSynthesizer) responseConfidence(analysis domain.QueryAnalysis, retrieval *domain.RetrievalResult, responseLength int, noEvidence bool) float64 {
	if noEvidence {
		return minFloat(analysis.Confidence, 0.3)
	}

	confidence := analysis.Confidence

	var sum float64
	for _, c := range retrieval.Reranked {
		sum += c.FinalScore
	}
	confidence += (sum / float64(len(retrieval.Reranked))) * 0.2

	if responseLength > 100 {
		confidence += 0.1
	}
	if analysis.RequiresVisuals && len(retrieval.Visual) > 0 {
		confidence += 0.1
	}
	return domain.ClampScore(confidence)
}

func (s *ResponseSynthesizer) extractSources(reranked []domain.Candidate) []domain.SourceRef {
	sources := make([]domain.SourceRef, 0, s.opts.SourceCap)
	for _, c := range reranked {
		if len(sources) >= s.opts.SourceCap {
			break
		}
		sources = append(sources, domain.SourceRef{
			Content:        truncateContent(c.Content, s.opts.SourcePreviewChars),
			Page:           c.PageNumber + 1,
			Type:           c.ContentType,
			RelevanceScore: c.FinalScore,
		})
	}
	return sources
}

// extractVisuals resolves the stored asset reference for each visual
// candidate. Candidates missing from the registry are skipped.
func (s *ResponseSynthesizer) extractVisuals(ctx context.Context, visual []domain.Candidate) []domain.VisualAttachment {
	attachments := make([]domain.VisualAttachment, 0, s.opts.VisualCap)
	for _, c := range visual {
		if len(attachments) >= s.opts.VisualCap {
			break
		}
		if c.VisualRef == "" {
			continue
		}
		element, err := s.visuals.GetByID(ctx, c.VisualRef)
		if err != nil {
			s.log.Warn("visual_lookup_failed", "visual_id", c.VisualRef, "error", err)
			continue
		}
		attachments = append(attachments, domain.VisualAttachment{
			ID:             element.ID,
			Kind:           element.Kind,
			Description:    c.Content,
			Page:           c.PageNumber + 1,
			AssetRef:       element.AssetRef,
			RelevanceScore: c.FinalScore,
		})
	}
	return attachments
}

func truncateContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
