package domain

// QueryAnalysis is the immutable result of query understanding. Every query
// yields exactly one analysis; analysis never fails outward, so downstream
// stages can rely on the intent being one of the closed Intent set.
type QueryAnalysis struct {
	Intent           Intent         `json:"intent"`
	Confidence       float64        `json:"confidence"`
	Keywords         []string       `json:"keywords"`
	VisualKeywords   []string       `json:"visual_keywords"`
	ComplexityScore  float64        `json:"complexity_score"`
	RequiresVisuals  bool           `json:"requires_visuals"`
	RequiresAnalysis bool           `json:"requires_analysis"`
	TemplateID       string         `json:"template_id"`
	Metadata         map[string]any `json:"metadata"`
}

// ConversationTurn is one prior exchange supplied with a follow-up query.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
