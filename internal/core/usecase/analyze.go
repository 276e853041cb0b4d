package usecase

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/ametelin/docinsight/internal/core/domain"
)

// QueryAnalyzer classifies a raw query into intent, keyword sets, complexity
// and requirement flags. It never fails outward: malformed or empty input
// degrades to the default textual analysis so callers always receive a
// usable result.
type QueryAnalyzer struct {
	log *slog.Logger
}

func NewQueryAnalyzer(log *slog.Logger) *QueryAnalyzer {
	if log == nil {
		log = slog.Default()
	}
	return &QueryAnalyzer{log: log}
}

func (a *QueryAnalyzer) Analyze(query string, history []domain.ConversationTurn) domain.QueryAnalysis {
	if strings.TrimSpace(query) == "" {
		a.log.Debug("query_analysis_degraded", "reason", "empty query")
		return defaultAnalysis()
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	keywords := extractKeywords(query)
	visualKeywords := intersectVocabulary(keywords, visualVocabulary)

	intent := detectIntent(queryLower, keywords, visualKeywords)
	confidence := classificationConfidence(queryLower, intent, keywords)
	complexity := assessComplexity(query, queryLower, keywords)

	requiresVisuals := intent == domain.IntentVisual ||
		intent == domain.IntentComparative ||
		len(visualKeywords) > 0
	requiresAnalysis := intent == domain.IntentAnalytical ||
		intent == domain.IntentComparative ||
		anyInVocabulary(keywords, analyticalVocabulary)

	return domain.QueryAnalysis{
		Intent:           intent,
		Confidence:       confidence,
		Keywords:         keywords,
		VisualKeywords:   visualKeywords,
		ComplexityScore:  complexity,
		RequiresVisuals:  requiresVisuals,
		RequiresAnalysis: requiresAnalysis,
		// Comparative queries keep the comparative template; only
		// keyword-driven visual signals select the visual one.
		TemplateID:       SelectTemplate(intent, len(visualKeywords) > 0),
		Metadata: map[string]any{
			"query_length":         len(query),
			"word_count":           len(strings.Fields(query)),
			"has_question_words":   containsAnyLiteral(queryLower, questionWords),
			"is_comparative":       containsAnyLiteral(queryLower, comparativeLiterals),
			"conversation_context": len(history),
		},
	}
}

func defaultAnalysis() domain.QueryAnalysis {
	return domain.QueryAnalysis{
		Intent:          domain.IntentTextual,
		Confidence:      0.5,
		Keywords:        []string{},
		VisualKeywords:  []string{},
		ComplexityScore: 0.5,
		TemplateID:      domain.TemplateBasic,
		Metadata:        map[string]any{},
	}
}

// detectIntent applies ordered first-match precedence: VISUAL beats
// COMPARATIVE beats ANALYTICAL beats SUMMARY beats FACTUAL; TEXTUAL is the
// fallthrough. HYBRID belongs to the closed intent set but is never produced
// by classification.
func detectIntent(queryLower string, keywords, visualKeywords []string) domain.Intent {
	switch {
	case len(visualKeywords) > 0 || containsAnyLiteral(queryLower, visualIntentLiterals):
		return domain.IntentVisual
	case containsAnyLiteral(queryLower, comparativeLiterals):
		return domain.IntentComparative
	case anyInVocabulary(keywords, analyticalVocabulary):
		return domain.IntentAnalytical
	case containsAnyLiteral(queryLower, summaryLiterals):
		return domain.IntentSummary
	case containsAnyLiteral(queryLower, interrogativeLiterals):
		return domain.IntentFactual
	default:
		return domain.IntentTextual
	}
}

func classificationConfidence(queryLower string, intent domain.Intent, keywords []string) float64 {
	confidence := 0.6
	if intent == domain.IntentVisual && containsAnyLiteral(queryLower, strongVisualLiterals) {
		confidence += 0.3
	}
	if intent == domain.IntentAnalytical && anyInVocabulary(keywords, strongAnalyticalLiterals) {
		confidence += 0.2
	}
	return domain.ClampScore(confidence)
}

// assessComplexity sums four bounded components: query length, complex
// vocabulary density, question punctuation, and multi-aspect conjunctions.
func assessComplexity(query, queryLower string, keywords []string) float64 {
	score := 0.0

	wordCount := len(strings.Fields(query))
	score += minFloat(float64(wordCount)/20.0, 0.3)

	complexMatches := 0
	for _, kw := range keywords {
		if _, ok := complexVocabulary[kw]; ok {
			complexMatches++
		}
	}
	score += minFloat(float64(complexMatches)/5.0, 0.3)

	if strings.Contains(query, "?") {
		score += 0.2
	}
	if containsAnyLiteral(queryLower, conjunctionLiterals) {
		score += 0.2
	}

	return domain.ClampScore(score)
}

// extractKeywords lowercases, splits on non-alphanumeric runes and drops
// stop words and tokens of length <= 2.
func extractKeywords(query string) []string {
	tokens := splitAlphaNumLower(query)
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) <= 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		out = append(out, token)
	}
	return out
}

func intersectVocabulary(keywords []string, vocab map[string]struct{}) []string {
	out := make([]string, 0, 4)
	for _, kw := range keywords {
		if _, ok := vocab[kw]; ok {
			out = append(out, kw)
		}
	}
	return out
}

func anyInVocabulary(keywords []string, vocab map[string]struct{}) bool {
	for _, kw := range keywords {
		if _, ok := vocab[kw]; ok {
			return true
		}
	}
	return false
}

func containsAnyLiteral(queryLower string, literals []string) bool {
	for _, lit := range literals {
		if strings.Contains(queryLower, lit) {
			return true
		}
	}
	return false
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
