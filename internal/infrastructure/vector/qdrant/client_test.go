package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ametelin/docinsight/internal/core/domain"
)

type embedderStub struct{}

func (embedderStub) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5, 0.5}
	}
	return out, nil
}

func (embedderStub) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.5, 0.5}, nil
}

func TestIndexBatchEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/docs/points":
			if r.URL.Query().Get("wait") != "true" {
				t.Errorf("upsert must be waited")
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "docs", embedderStub{})
	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	chunks := []domain.DocumentChunk{
		{Content: "a", ContentType: domain.ContentText, PageNumber: 0},
		{Content: "b", ContentType: domain.ContentVisual, PageNumber: 1, VisualRef: "vis-1"},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}

	if err := client.IndexBatch(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("first IndexBatch() error = %v", err)
	}
	if err := client.IndexBatch(context.Background(), doc, chunks, vectors); err != nil {
		t.Fatalf("second IndexBatch() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected 1 ensure call, got %d", got)
	}
}

func TestIndexBatchRejectsMismatchedVectors(t *testing.T) {
	client := New("http://unused", "docs", embedderStub{})
	err := client.IndexBatch(context.Background(), &domain.Document{ID: "d"},
		[]domain.DocumentChunk{{Content: "a"}}, nil)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestSearchMapsPayloadToCandidates(t *testing.T) {
	var gotFilter map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs/points/search" {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f, ok := req["filter"].(map[string]any); ok {
			gotFilter = f
		}
		_, _ = w.Write([]byte(`{"result":[
			{"id":"p-1","score":0.91,"payload":{"doc_id":"doc-1","text":"revenue grew","content_type":"text","page_number":3,"visual_ref":""}},
			{"id":"p-2","score":0.84,"payload":{"doc_id":"doc-1","text":"table: revenue by quarter","content_type":"synthetic_visual","page_number":4,"visual_ref":"vis-9"}}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs", embedderStub{})
	out, err := client.Search(context.Background(), "revenue", 10, domain.SearchFilter{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(out))
	}

	first := out[0]
	if first.ID != "p-1" || first.DocumentID != "doc-1" || first.PageNumber != 3 {
		t.Fatalf("unexpected first candidate: %+v", first)
	}
	if first.ContentType != domain.ContentText || first.SimilarityScore != 0.91 {
		t.Fatalf("unexpected first candidate mapping: %+v", first)
	}
	if out[1].ContentType != domain.ContentVisual || out[1].VisualRef != "vis-9" {
		t.Fatalf("unexpected visual candidate mapping: %+v", out[1])
	}

	if gotFilter == nil {
		t.Fatalf("expected doc_id filter in request")
	}
}

func TestSearchWithoutFilterOmitsFilterClause(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["filter"]; ok {
			t.Errorf("zero filter must not send a filter clause")
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "docs", embedderStub{})
	out, err := client.Search(context.Background(), "anything", 5, domain.SearchFilter{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}
