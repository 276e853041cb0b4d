package qdrant

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ametelin/docinsight/internal/core/domain"
	"github.com/ametelin/docinsight/internal/core/ports"
	"github.com/ametelin/docinsight/internal/infrastructure/resilience"
)

// ResilientClient wraps the raw client's search and upsert with retry and
// breaker behavior. Search and upsert get separate breakers so a broken
// write path does not take queries down with it.
type ResilientClient struct {
	inner    *Client
	executor *resilience.Executor
}

func NewResilientClient(inner *Client, executor *resilience.Executor) *ResilientClient {
	return &ResilientClient{inner: inner, executor: executor}
}

func (c *ResilientClient) Search(ctx context.Context, query string, topK int, filter domain.SearchFilter) ([]domain.Candidate, error) {
	var out []domain.Candidate
	err := c.executor.Execute(ctx, "qdrant.search", func(callCtx context.Context) error {
		var callErr error
		out, callErr = c.inner.Search(callCtx, query, topK, filter)
		return callErr
	}, classifyQdrantError)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ResilientClient) IndexBatch(ctx context.Context, doc *domain.Document, chunks []domain.DocumentChunk, vectors [][]float32) error {
	return c.executor.Execute(ctx, "qdrant.upsert", func(callCtx context.Context) error {
		return c.inner.IndexBatch(callCtx, doc, chunks, vectors)
	}, classifyQdrantError)
}

func classifyQdrantError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var sErr *statusError
	if errors.As(err, &sErr) {
		switch sErr.statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		default:
			return resilience.ErrorClassification{
				Retryable:     false,
				RecordFailure: false,
			}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

var (
	_ ports.SimilaritySearcher = (*ResilientClient)(nil)
	_ ports.VectorIndexer      = (*ResilientClient)(nil)
)
