package domain

// ContentType distinguishes plain text chunks from synthetic visual proxies,
// the searchable text stand-ins for charts, tables and figures.
type ContentType string

const (
	ContentText   ContentType = "text"
	ContentVisual ContentType = "synthetic_visual"
)

// SearchFilter scopes a similarity search. A zero filter searches everything.
type SearchFilter struct {
	DocumentID string
}

// Candidate is one retrieved unit of content flowing through the retrieval
// pipeline. SimilarityScore comes from the vector index; FinalScore is set
// by the fusion stage and is zero before it runs.
type Candidate struct {
	ID              string      `json:"id"`
	Content         string      `json:"content"`
	ContentType     ContentType `json:"content_type"`
	DocumentID      string      `json:"document_id"`
	PageNumber      int         `json:"page_number"`
	VisualRef       string      `json:"visual_ref,omitempty"`
	SimilarityScore float64     `json:"similarity_score"`
	FinalScore      float64     `json:"final_score"`
}

// RetrievalResult groups the per-stage candidate lists of one fan-out.
// Reranked is the authoritative output: deduplicated by id, at most ten
// entries, sorted non-increasing by FinalScore with retrieval order as
// the tie-break.
type RetrievalResult struct {
	Primary  []Candidate `json:"primary"`
	Visual   []Candidate `json:"visual"`
	Context  []Candidate `json:"context"`
	Reranked []Candidate `json:"reranked"`

	Stats RetrievalStats `json:"stats"`
}

type RetrievalStats struct {
	PrimaryCount  int `json:"primary_count"`
	VisualCount   int `json:"visual_count"`
	ContextCount  int `json:"context_count"`
	TotalReranked int `json:"total_reranked"`
}

// ClampScore bounds a fused or derived score to the [0,1] contract shared
// by every score field in the pipeline.
func ClampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
