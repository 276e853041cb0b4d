package domain

// ResponseTypeError marks a GeneratedResponse produced by a whole-pipeline
// failure. It is still returned as a value, never as an error.
const ResponseTypeError = "error"

// SourceRef is a candidate reduced to what the client needs for citation.
// Page is 1-based.
type SourceRef struct {
	Content        string      `json:"content"`
	Page           int         `json:"page"`
	Type           ContentType `json:"type"`
	RelevanceScore float64     `json:"relevance_score"`
}

// VisualAttachment is a visual candidate plus the reference to its stored
// binary asset. The asset itself is opaque to the query pipeline.
type VisualAttachment struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	Description    string  `json:"description"`
	Page           int     `json:"page"`
	AssetRef       string  `json:"asset_ref,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// GeneratedResponse is the terminal output of one query.
type GeneratedResponse struct {
	Content         string             `json:"content"`
	Sources         []SourceRef        `json:"sources"`
	Visuals         []VisualAttachment `json:"visuals"`
	ConfidenceScore float64            `json:"confidence_score"`
	ResponseType    string             `json:"response_type"`
	Metadata        map[string]any     `json:"metadata"`
}

func (r GeneratedResponse) IsError() bool {
	return r.ResponseType == ResponseTypeError
}
