package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ametelin/docinsight/internal/config"
	"github.com/ametelin/docinsight/internal/core/ports"
	"github.com/ametelin/docinsight/internal/core/usecase"
	"github.com/ametelin/docinsight/internal/infrastructure/decompose"
	"github.com/ametelin/docinsight/internal/infrastructure/llm/ollama"
	"github.com/ametelin/docinsight/internal/infrastructure/queue/nats"
	"github.com/ametelin/docinsight/internal/infrastructure/repository/postgres"
	"github.com/ametelin/docinsight/internal/infrastructure/resilience"
	"github.com/ametelin/docinsight/internal/infrastructure/storage/localfs"
	"github.com/ametelin/docinsight/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue   ports.MessageQueue
	Repo    ports.DocumentRepository
	Visuals ports.VisualRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QueryService

	closeFn func()
}

// New wires the full dependency graph. The retrieval observer is optional;
// the api passes its metrics there, the worker passes nil.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, observer usecase.RetrievalObserver) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	visuals := postgres.NewVisualRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	sharedExecutor := resilience.NewExecutor(resilience.DefaultPolicy(), log)
	generateExecutor := resilience.NewExecutor(resilience.SingleAttemptPolicy(), log)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: sharedExecutor,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewResilientEmbedder(ollama.NewEmbedder(ollamaClient), sharedExecutor)
	generator := ollama.NewResilientGenerator(ollama.NewGenerator(ollamaClient), generateExecutor)

	vectorDB := qdrant.NewResilientClient(
		qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, embedder),
		sharedExecutor,
	)

	templates, err := config.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load response templates: %w", err)
	}

	decomposer := decompose.New(storage, cfg.ChunkSize, cfg.ChunkOverlap)

	analyzer := usecase.NewQueryAnalyzer(log)
	retriever := usecase.NewRetrievalCoordinator(vectorDB, observer, log, usecase.RetrievalOptions{
		PrimaryTopK:  cfg.RetrievalPrimaryTopK,
		VisualTopK:   cfg.RetrievalVisualTopK,
		ContextTopK:  cfg.RetrievalContextTopK,
		ContextCap:   cfg.RetrievalContextCap,
		RerankLimit:  cfg.RetrievalRerankLimit,
		StageTimeout: time.Duration(cfg.RetrievalStageTimeoutSec) * time.Second,
	})
	synthesizer := usecase.NewResponseSynthesizer(generator, visuals, log, usecase.SynthesisOptions{})

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, decomposer, embedder, vectorDB, visuals)
	queryUC := usecase.NewProcessQueryUseCase(analyzer, templates, retriever, synthesizer, repo, log)

	return &App{
		Config:  cfg,
		Log:     log,
		Queue:   queue,
		Repo:    repo,
		Visuals: visuals,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
