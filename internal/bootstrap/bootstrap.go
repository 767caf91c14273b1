package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jlozanoz/normateca/internal/config"
	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
	"github.com/jlozanoz/normateca/internal/core/usecase"
	"github.com/jlozanoz/normateca/internal/infrastructure/llm/ollama"
	"github.com/jlozanoz/normateca/internal/infrastructure/queue/nats"
	"github.com/jlozanoz/normateca/internal/infrastructure/repository/postgres"
	"github.com/jlozanoz/normateca/internal/infrastructure/resilience"
	"github.com/jlozanoz/normateca/internal/infrastructure/storage/localfs"
	"github.com/jlozanoz/normateca/internal/infrastructure/vector/qdrant"
	"github.com/jlozanoz/normateca/internal/infrastructure/vocabulary"
)

// App holds the wired use cases shared by the api, worker and mcp entry
// points.
type App struct {
	Config config.Config

	Queue ports.MessageQueue

	RetrieveUC  ports.FragmentRetriever
	AnswerUC    ports.AnswerService
	InventoryUC *usecase.InventoryUseCase
	AdmitUC     ports.FragmentAdmitter
	IndexUC     ports.SourceIndexer
	TaskUC      ports.TaskReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	fragments := postgres.NewFragmentRepository(db)
	if err := fragments.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure fragments schema: %w", err)
	}
	tasks := postgres.NewTaskRepository(db)
	if err := tasks.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure tasks schema: %w", err)
	}

	archive, err := localfs.New(cfg.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("init archive storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSAdmittedSubject, cfg.NATSIndexedSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewCachingEmbedder(ollama.NewEmbedder(ollamaClient, executor), cfg.EmbedCacheCapacity)
	generator := ollama.NewGenerator(ollamaClient, executor)

	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	terms, err := vocabulary.LoadFile(cfg.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	retrievalCfg := domain.RetrievalConfig{
		SimilarityThreshold: cfg.SimilarityThreshold,
		SemanticWeight:      cfg.SemanticWeight,
		LexicalWeight:       cfg.LexicalWeight,
		DiversityThreshold:  cfg.DiversityThreshold,
		MaxPerSource:        cfg.MaxPerSource,
	}.Normalize()

	inventoryUC := usecase.NewInventoryUseCase(fragments, time.Duration(cfg.InventoryTTLSeconds)*time.Second)
	retrieveUC := usecase.NewRetrieveUseCase(
		embedder,
		vectorIndex,
		fragments,
		fragments,
		terms,
		inventoryUC,
		time.Duration(cfg.StrategyTimeoutSeconds)*time.Second,
	)
	answerUC := usecase.NewAnswerUseCase(retrieveUC, generator, retrievalCfg)
	admitUC := usecase.NewAdmitUseCase(fragments, tasks, archive, queue)
	indexUC := usecase.NewIndexUseCase(tasks, fragments, embedder, vectorIndex, queue)
	taskUC := usecase.NewTaskUseCase(tasks)

	return &App{
		Config: cfg,
		Queue:  queue,

		RetrieveUC:  retrieveUC,
		AnswerUC:    answerUC,
		InventoryUC: inventoryUC,
		AdmitUC:     admitUC,
		IndexUC:     indexUC,
		TaskUC:      taskUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// RetrievalConfig is the server-wide retrieval tuning derived from the
// environment; per-request overrides layer on top of it.
func (a *App) RetrievalConfig() domain.RetrievalConfig {
	return domain.RetrievalConfig{
		SimilarityThreshold: a.Config.SimilarityThreshold,
		SemanticWeight:      a.Config.SemanticWeight,
		LexicalWeight:       a.Config.LexicalWeight,
		DiversityThreshold:  a.Config.DiversityThreshold,
		MaxPerSource:        a.Config.MaxPerSource,
	}.Normalize()
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
