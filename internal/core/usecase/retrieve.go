package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

const (
	stagePrimary = "primary"
	stageVisual  = "visual"
	stageContext = "context"
)

// RetrievalObserver receives per-stage outcomes. Implementations must be
// safe for concurrent use.
type RetrievalObserver interface {
	StageCompleted(stage string, candidates int)
	StageFailed(stage string)
}

type noopRetrievalObserver struct{}

func (noopRetrievalObserver) StageCompleted(string, int) {}
func (noopRetrievalObserver) StageFailed(string)         {}

type RetrievalOptions struct {
	PrimaryTopK  int
	VisualTopK   int
	ContextTopK  int
	ContextCap   int
	RerankLimit  int
	StageTimeout time.Duration
}

func (o RetrievalOptions) normalize() RetrievalOptions {
	out := o
	if out.PrimaryTopK <= 0 {
		out.PrimaryTopK = 10
	}
	if out.VisualTopK <= 0 {
		out.VisualTopK = 5
	}
	if out.ContextTopK <= 0 {
		out.ContextTopK = 3
	}
	if out.ContextCap <= 0 {
		out.ContextCap = 5
	}
	if out.RerankLimit <= 0 {
		out.RerankLimit = 10
	}
	if out.StageTimeout <= 0 {
		out.StageTimeout = 10 * time.Second
	}
	return out
}

// RetrievalCoordinator runs the multi-stage fan-out against the similarity
// search capability and fuses the stage outputs. Each stage is a bulkhead:
// a failed search logs, counts, and contributes an empty list instead of
// aborting the pipeline.
type RetrievalCoordinator struct {
	search   ports.SimilaritySearcher
	observer RetrievalObserver
	log      *slog.Logger
	opts     RetrievalOptions
}

func NewRetrievalCoordinator(search ports.SimilaritySearcher, observer RetrievalObserver, log *slog.Logger, opts RetrievalOptions) *RetrievalCoordinator {
	if observer == nil {
		observer = noopRetrievalObserver{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetrievalCoordinator{
		search:   search,
		observer: observer,
		log:      log,
		opts:     opts.normalize(),
	}
}

// Retrieve executes primary and visual searches concurrently, joins them,
// expands context by page, and fuses everything into the reranked list.
func (rc *RetrievalCoordinator) Retrieve(ctx context.Context, query string, analysis domain.QueryAnalysis, filter domain.SearchFilter) *domain.RetrievalResult {
	var (
		wg      sync.WaitGroup
		primary []domain.Candidate
		visual  []domain.Candidate
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		primary = rc.runStage(ctx, stagePrimary, query, rc.opts.PrimaryTopK, filter)
	}()

	if analysis.RequiresVisuals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			visual = rc.visualStage(ctx, analysis, filter)
		}()
	}
	wg.Wait()

	contextual := rc.contextExpansion(ctx, primary, visual, filter)

	reranked := fuseAndRerank(analysis, primary, visual, contextual, rc.opts.RerankLimit)
	propagateScores(analysis, reranked, primary, visual, contextual)

	return &domain.RetrievalResult{
		Primary:  primary,
		Visual:   visual,
		Context:  contextual,
		Reranked: reranked,
		Stats: domain.RetrievalStats{
			PrimaryCount:  len(primary),
			VisualCount:   len(visual),
			ContextCount:  len(contextual),
			TotalReranked: len(reranked),
		},
	}
}

func (rc *RetrievalCoordinator) runStage(ctx context.Context, stage, query string, topK int, filter domain.SearchFilter) []domain.Candidate {
	stageCtx, cancel := context.WithTimeout(ctx, rc.opts.StageTimeout)
	defer cancel()

	candidates, err := rc.search.Search(stageCtx, query, topK, filter)
	if err != nil {
		rc.log.Warn("retrieval_stage_failed", "stage", stage, "error", err)
		rc.observer.StageFailed(stage)
		return nil
	}
	rc.observer.StageCompleted(stage, len(candidates))
	return candidates
}

// visualStage searches with the visual keywords plus fixed anchor terms and
// keeps only synthetic visual candidates.
func (rc *RetrievalCoordinator) visualStage(ctx context.Context, analysis domain.QueryAnalysis, filter domain.SearchFilter) []domain.Candidate {
	terms := make([]string, 0, len(analysis.VisualKeywords)+len(visualAnchorTerms))
	terms = append(terms, analysis.VisualKeywords...)
	terms = append(terms, visualAnchorTerms...)
	visualQuery := strings.Join(terms, " ")

	results := rc.runStage(ctx, stageVisual, visualQuery, rc.opts.VisualTopK, filter)

	out := make([]domain.Candidate, 0, len(results))
	for _, c := range results {
		if c.ContentType == domain.ContentVisual {
			out = append(out, c)
		}
	}
	return out
}

// contextExpansion issues one secondary search per distinct page referenced
// by the earlier stages, pages ascending for deterministic order, and keeps
// results whose ids are not already present, capped overall.
func (rc *RetrievalCoordinator) contextExpansion(ctx context.Context, primary, visual []domain.Candidate, filter domain.SearchFilter) []domain.Candidate {
	seen := make(map[string]struct{}, len(primary)+len(visual))
	pageSet := make(map[int]struct{})
	for _, c := range primary {
		seen[c.ID] = struct{}{}
		pageSet[c.PageNumber] = struct{}{}
	}
	for _, c := range visual {
		seen[c.ID] = struct{}{}
		pageSet[c.PageNumber] = struct{}{}
	}
	if len(pageSet) == 0 {
		return nil
	}

	pages := make([]int, 0, len(pageSet))
	for page := range pageSet {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	perPage := make([][]domain.Candidate, len(pages))
	var wg sync.WaitGroup
	for i, page := range pages {
		wg.Add(1)
		go func(i, page int) {
			defer wg.Done()
			pageQuery := fmt.Sprintf("page %d", page)
			perPage[i] = rc.runStage(ctx, stageContext, pageQuery, rc.opts.ContextTopK, filter)
		}(i, page)
	}
	wg.Wait()

	out := make([]domain.Candidate, 0, rc.opts.ContextCap)
	for _, results := range perPage {
		for _, c := range results {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
			if len(out) >= rc.opts.ContextCap {
				return out
			}
		}
	}
	return out
}
