package usecase

// Named vocabularies behind intent detection. Keeping them as package-level
// sets makes the precedence order independently testable instead of
// scattering literals through the classifier.

var stopWords = newWordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "must", "can", "this", "that", "these",
	"those", "what", "when", "where", "why", "how",
)

var visualVocabulary = newWordSet(
	"chart", "graph", "table", "figure", "diagram", "image", "plot",
	"visualization", "visual", "show", "display", "picture", "drawing",
	"trend", "pattern", "data", "statistics", "numbers", "values",
	"comparison", "distribution", "correlation", "relationship",
)

var analyticalVocabulary = newWordSet(
	"analyze", "analysis", "insight", "trend", "pattern", "correlation",
	"relationship", "implication", "significance", "conclusion",
	"interpretation", "meaning", "impact", "effect", "cause",
	"reason", "explanation", "methodology", "approach",
)

// strongVisualLiterals boost classification confidence when present verbatim.
var strongVisualLiterals = []string{"chart", "graph", "table"}

var strongAnalyticalLiterals = newWordSet("analyze", "analysis", "insight")

// visualIntentLiterals trigger VISUAL intent by substring match even when
// tokenization dropped the term.
var visualIntentLiterals = []string{"chart", "graph", "table", "figure", "visual"}

var comparativeLiterals = []string{
	"compare", "comparison", "versus", "vs", "difference", "similar",
	"different", "contrast",
}

var summaryLiterals = []string{"summary", "summarize", "overview", "main points"}

var interrogativeLiterals = []string{"what", "when", "where", "who", "which"}

var questionWords = []string{
	"what", "when", "where", "why", "how", "who", "which", "whose", "whom",
}

var complexVocabulary = newWordSet(
	"analysis", "correlation", "relationship", "implication", "methodology",
)

var conjunctionLiterals = []string{"and", "also", "additionally", "furthermore"}

// visualAnchorTerms are always appended to the visual-stage search query.
var visualAnchorTerms = []string{"chart", "graph", "table", "figure"}

func newWordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}
