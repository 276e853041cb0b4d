package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
	"github.com/ametelin/docinsight/internal/observability/metrics"
)

// maxUploadBytes bounds multipart uploads before they reach storage.
const maxUploadBytes = 64 << 20

type Router struct {
	ingestUC ports.DocumentIngestor
	queryUC  ports.QueryService
	docs     ports.DocumentReader
	metrics  *metrics.HTTPServerMetrics
	log      *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
}

type RouterOptions struct {
	Logger         *slog.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

func NewRouter(
	ingestUC ports.DocumentIngestor,
	queryUC ports.QueryService,
	docs ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	return &Router{
		ingestUC:       ingestUC,
		queryUC:        queryUC,
		docs:           docs,
		metrics:        m,
		log:            options.Logger,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/query", rt.processQuery)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler, rt.log))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload()
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type queryRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id"`
	History    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
}

func (rt *Router) processQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	history := make([]domain.ConversationTurn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, domain.ConversationTurn{Role: turn.Role, Content: turn.Content})
	}

	start := time.Now()
	response, err := rt.queryUC.ProcessQuery(r.Context(), req.Query, req.DocumentID, history)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		intent, _ := response.Metadata["query_intent"].(string)
		rt.metrics.RecordQuery(intent, response.ResponseType, len(response.Sources), response.ConfidenceScore, time.Since(start))
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
