// Package app assembles the parsing pipeline from configuration. Both the
// HTTP server and the CLI build their components here.
package app

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sjaggi1/resume-parser/internal/config"
	"sjaggi1/resume-parser/internal/repositories"
	"sjaggi1/resume-parser/internal/services"
)

type App struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Repo    repositories.ResumeRepository
	Storage services.StorageService
	Service services.ResumeService
	Worker  services.Worker
	Indexer services.ResumeIndexer
	Health  *services.HealthService

	completer services.Completer
}

// New wires every component. Optional dependencies (language model, OCR,
// vector search) are left out with a warning when they are not configured.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.DB = db
	if db != nil {
		a.Repo = repositories.NewResumeRepository(db)
	} else {
		log.Info("using in-memory resume store")
		a.Repo = repositories.NewMemoryResumeRepository()
	}

	a.Storage, err = services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	providers, gemini := buildProviders(ctx, cfg, log)
	var completer services.Completer
	var embedder services.Embedder
	if len(providers) > 0 {
		chain := make([]services.Completer, len(providers))
		for i, p := range providers {
			chain[i] = p
		}
		completer = services.NewFallbackCompleter(chain, log)
		embedder = providers[0]
		log.Info("language model configured", zap.String("provider", completer.Name()))
	} else {
		log.Warn("no language model configured, structuring will use pattern extraction")
	}
	a.completer = completer

	structurer, err := services.NewProfileStructurer(completer, services.StructurerConfig{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	extractor := services.NewTextExtractor(
		services.NewPDFParserService(),
		buildOCR(cfg, gemini, log),
		cfg.Processing.ExtractTimeout,
		log,
	)

	var vectorStore services.VectorStore
	if cfg.Qdrant.URL != "" && embedder != nil {
		vectorStore, err = services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, cfg.Qdrant.VectorSize, log)
		if err == nil {
			err = vectorStore.InitCollection(ctx)
		}
		if err != nil {
			log.Warn("similar-candidate search disabled", zap.Error(err))
			vectorStore = nil
		} else {
			a.Indexer = services.NewResumeIndexer(embedder, vectorStore, log)
		}
	}

	a.Service = services.NewResumeService(services.ResumeServiceDeps{
		Repo:          a.Repo,
		Storage:       a.Storage,
		Extractor:     extractor,
		Structurer:    structurer,
		PostProcessor: services.NewPostProcessor(log),
		Matcher:       services.NewMatchScorer(),
		Indexer:       a.Indexer,
		Log:           log,
	}, services.ResumeServiceConfig{
		MaxFileSize:         cfg.Storage.MaxFileSize,
		AllowedExtensions:   cfg.Storage.AllowedExtensions,
		EnableOCR:           cfg.Processing.EnableOCR,
		EnableAIEnhancement: cfg.Processing.EnableAIEnhancement,
	})

	a.Worker = services.NewWorker(a.Repo, a.Service, services.WorkerConfig{
		Concurrency:  cfg.Worker.Concurrency,
		QueueSize:    cfg.Worker.QueueSize,
		PollInterval: cfg.Worker.PollInterval,
	}, log)
	a.Service.AttachQueue(a.Worker)

	a.Health = services.NewHealthService(cfg.Server.Version, cfg.Server.Env, a.healthChecks(vectorStore), log)

	return a, nil
}

func buildProviders(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]services.LLMProvider, services.GeminiService) {
	var (
		providers []services.LLMProvider
		gemini    services.GeminiService
		seen      = make(map[string]bool)
	)

	for _, name := range []string{cfg.LLM.Provider, cfg.LLM.FallbackProvider} {
		if name == "" || name == "none" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "gemini":
			if cfg.LLM.Gemini.APIKey == "" {
				log.Warn("GEMINI_API_KEY is not set, skipping provider", zap.String("provider", name))
				continue
			}
			g, err := services.NewGeminiService(ctx, cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model, cfg.LLM.Gemini.EmbedModel, cfg.LLM.MaxRetries, log)
			if err != nil {
				log.Warn("failed to initialize gemini", zap.Error(err))
				continue
			}
			gemini = g
			providers = append(providers, g)
		case "openai":
			if cfg.LLM.OpenAI.APIKey == "" {
				log.Warn("OPENAI_API_KEY is not set, skipping provider", zap.String("provider", name))
				continue
			}
			providers = append(providers, services.NewOpenAIService(
				cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.BaseURL, cfg.LLM.OpenAI.Model, cfg.LLM.OpenAI.EmbedModel, log,
			))
		default:
			log.Warn("unknown language model provider", zap.String("provider", name))
		}
	}

	return providers, gemini
}

func buildOCR(cfg *config.Config, gemini services.GeminiService, log *zap.Logger) services.OCRService {
	if !cfg.Processing.EnableOCR {
		return nil
	}

	var engine services.OCREngine
	switch cfg.Processing.OCRProvider {
	case "gemini":
		if gemini == nil {
			log.Warn("OCR_PROVIDER=gemini needs a configured gemini provider, OCR disabled")
			return nil
		}
		engine = services.NewGeminiVisionEngine(gemini.Client(), cfg.LLM.Gemini.Model)
	default:
		if _, err := exec.LookPath(cfg.Processing.TesseractCmd); err != nil {
			log.Warn("tesseract not found, OCR disabled", zap.String("command", cfg.Processing.TesseractCmd))
			return nil
		}
		engine = services.NewTesseractEngine(cfg.Processing.TesseractCmd, cfg.Processing.OCRLanguage)
	}

	var rasterizer services.Rasterizer
	if _, err := exec.LookPath(cfg.Processing.PdftoppmCmd); err == nil {
		rasterizer = services.NewPdftoppmRasterizer(cfg.Processing.PdftoppmCmd, cfg.Processing.OCRDPI)
	} else {
		log.Warn("pdftoppm not found, scanned PDFs cannot be OCR'd", zap.String("command", cfg.Processing.PdftoppmCmd))
	}

	log.Info("ocr configured", zap.String("engine", engine.Name()))
	return services.NewOCRService(engine, rasterizer, cfg.Processing.OCRConcurrency, log)
}

func (a *App) healthChecks(vectorStore services.VectorStore) []services.HealthCheck {
	checks := []services.HealthCheck{
		{Name: "database", Check: a.pingDatabase},
		{Name: "storage", Check: a.Storage.Check},
		{Name: "ai_service"},
		{Name: "vector_store"},
	}
	if a.completer != nil {
		checks[2].Check = func(context.Context) error { return nil }
	}
	if vectorStore != nil {
		checks[3].Check = vectorStore.Check
	}
	return checks
}

func (a *App) pingDatabase(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database connection.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
