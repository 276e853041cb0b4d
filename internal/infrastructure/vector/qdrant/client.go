package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
)

// Client implements both sides of the vector index: batch publication for
// the worker and query-by-text similarity search for the pipeline. Search
// embeds the query text through the injected embedder so callers never
// handle raw vectors.
type Client struct {
	baseURL    string
	collection string
	embedder   ports.Embedder
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string, embedder ports.Embedder) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// IndexBatch upserts one document's chunks as a single waited batch. The
// wait=true flag makes Qdrant block until the points are searchable, which
// is what lets status=ready gate query visibility.
func (c *Client) IndexBatch(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, point{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"doc_id":       doc.ID,
				"filename":     doc.Filename,
				"page_number":  chunk.PageNumber,
				"content_type": string(chunk.ContentType),
				"visual_ref":   chunk.VisualRef,
				"text":         chunk.Content,
			},
		})
	}

	reqBody := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	if err := c.doJSON(ctx, http.MethodPut, url, reqBody, nil, "upsert"); err != nil {
		return err
	}
	return nil
}

// Search embeds the query text and runs a dense similarity search. Results
// come back ranked by cosine similarity descending.
func (c *Client) Search(
	ctx context.Context,
	query string,
	topK int,
	filter domain.SearchFilter,
) ([]domain.Candidate, error) {
	queryVector, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}

	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter.DocumentID != "" {
		reqBody["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key": "doc_id",
					"match": map[string]any{
						"value": filter.DocumentID,
					},
				},
			},
		}
	}

	var searchResp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	if err := c.doJSON(ctx, http.MethodPost, url, reqBody, &searchResp, "search"); err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.Candidate{
			ID:              fmt.Sprintf("%v", r.ID),
			Content:         stringPayload(r.Payload, "text"),
			ContentType:     domain.ContentType(stringPayload(r.Payload, "content_type")),
			DocumentID:      stringPayload(r.Payload, "doc_id"),
			PageNumber:      intPayload(r.Payload, "page_number"),
			VisualRef:       stringPayload(r.Payload, "visual_ref"),
			SimilarityScore: domain.ClampScore(r.Score),
		})
	}
	return out, nil
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	err := c.doJSON(ctx, http.MethodPut, url, reqBody, nil, "ensure collection")
	// 409 means the collection already exists, which is fine.
	var statusErr *statusError
	if err != nil {
		if isStatus(err, http.StatusConflict, &statusErr) {
			c.markCollectionEnsured(vectorSize)
			return nil
		}
		return err
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			operation:  operation,
			statusCode: resp.StatusCode,
			status:     resp.Status,
			body:       strings.TrimSpace(string(raw)),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
	}
	return nil
}

func stringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func intPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
