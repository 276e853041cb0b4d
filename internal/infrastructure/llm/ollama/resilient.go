package ollama

import (
	"context"

	"github.com/ametelin/docinsight/internal/infrastructure/resilience"
)

// ResilientGenerator wraps Generate with a breaker-backed executor. The
// generation policy is single attempt: a slow model is never asked the
// same question twice for one query.
type ResilientGenerator struct {
	inner    *Generator
	executor *resilience.Executor
}

func NewResilientGenerator(inner *Generator, executor *resilience.Executor) *ResilientGenerator {
	return &ResilientGenerator{inner: inner, executor: executor}
}

func (g *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	err := g.executor.Execute(ctx, "ollama.generate", func(callCtx context.Context) error {
		var callErr error
		out, callErr = g.inner.Generate(callCtx, prompt)
		return callErr
	}, ClassifyError)
	if err != nil {
		return "", WrapTemporary("ollama generate", err)
	}
	return out, nil
}

// ResilientEmbedder wraps embedding calls with retry and breaker.
type ResilientEmbedder struct {
	inner    *Embedder
	executor *resilience.Executor
}

func NewResilientEmbedder(inner *Embedder, executor *resilience.Executor) *ResilientEmbedder {
	return &ResilientEmbedder{inner: inner, executor: executor}
}

func (e *ResilientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := e.executor.Execute(ctx, "ollama.embed", func(callCtx context.Context) error {
		var callErr error
		out, callErr = e.inner.Embed(callCtx, texts)
		return callErr
	}, ClassifyError)
	if err != nil {
		return nil, WrapTemporary("ollama embed", err)
	}
	return out, nil
}

func (e *ResilientEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := e.executor.Execute(ctx, "ollama.embed", func(callCtx context.Context) error {
		var callErr error
		out, callErr = e.inner.EmbedQuery(callCtx, text)
		return callErr
	}, ClassifyError)
	if err != nil {
		return nil, WrapTemporary("ollama embed", err)
	}
	return out, nil
}
