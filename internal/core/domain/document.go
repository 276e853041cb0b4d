package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the registry record for an uploaded file. A document becomes
// visible to search only after its whole index batch landed and the status
// switched to ready.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	PageCount   int            `json:"page_count,omitempty"`
	ChunkCount  int            `json:"chunk_count,omitempty"`
	VisualCount int            `json:"visual_count,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// VisualElement is a non-text element extracted during decomposition.
// Description doubles as the synthetic visual proxy indexed for search;
// AssetRef points at the stored binary asset.
type VisualElement struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Kind        string    `json:"kind"`
	PageNumber  int       `json:"page_number"`
	Description string    `json:"description"`
	AssetRef    string    `json:"asset_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentChunk is one unit of decomposed content awaiting embedding.
type DocumentChunk struct {
	Content     string
	ContentType ContentType
	PageNumber  int
	VisualRef   string
}
