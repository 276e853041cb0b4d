package usecase

import (
	"sort"
	"strings"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// fuseAndRerank unions the stage lists, deduplicates by candidate id with
// the earliest stage occurrence winning, scores every survivor against the
// query analysis, stable-sorts descending and truncates to limit. Stable
// sort keeps original retrieval order as the tie-break.
func fuseAndRerank(analysis domain.QueryAnalysis, primary, visual, contextual []domain.Candidate, limit int) []domain.Candidate {
	if limit <= 0 {
		limit = 10
	}

	seen := make(map[string]struct{}, len(primary)+len(visual)+len(contextual))
	fused := make([]domain.Candidate, 0, len(primary)+len(visual)+len(contextual))
	for _, stage := range [][]domain.Candidate{primary, visual, contextual} {
		for _, c := range stage {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			c.FinalScore = relevanceScore(analysis, c)
			fused = append(fused, c)
		}
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].FinalScore > fused[j].FinalScore
	})

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}

// propagateScores writes the fused scores back onto the per-stage slices
// so their candidates carry the same final score as the reranked copies.
// Candidates that fell out of the truncated reranked list are scored
// directly with the same formula.
func propagateScores(analysis domain.QueryAnalysis, reranked []domain.Candidate, stages ...[]domain.Candidate) {
	byID := make(map[string]float64, len(reranked))
	for _, c := range reranked {
		byID[c.ID] = c.FinalScore
	}
	for _, stage := range stages {
		for i := range stage {
			if score, ok := byID[stage[i].ID]; ok {
				stage[i].FinalScore = score
				continue
			}
			stage[i].FinalScore = relevanceScore(analysis, stage[i])
		}
	}
}

// relevanceScore combines the vector similarity with three intent-aware
// boosts: synthetic visuals when visuals are required, the intent label
// appearing in the content, and visual-keyword substring hits.
func relevanceScore(analysis domain.QueryAnalysis, c domain.Candidate) float64 {
	score := c.SimilarityScore

	if analysis.RequiresVisuals && c.ContentType == domain.ContentVisual {
		score += 0.2
	}

	contentLower := strings.ToLower(c.Content)
	if strings.Contains(contentLower, analysis.Intent.String()) {
		score += 0.1
	}

	for _, kw := range analysis.VisualKeywords {
		if strings.Contains(contentLower, kw) {
			score += 0.05
		}
	}

	return domain.ClampScore(score)
}
