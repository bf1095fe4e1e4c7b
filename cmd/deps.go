package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/agents"
	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/ai/gemini"
	"github.com/bhanmrinal/cf-project/internal/ai/langchain"
	"github.com/bhanmrinal/cf-project/internal/conversation"
	"github.com/bhanmrinal/cf-project/internal/intent"
	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/research"
	"github.com/bhanmrinal/cf-project/internal/router"
	"github.com/bhanmrinal/cf-project/internal/secrets"
	"github.com/bhanmrinal/cf-project/internal/storage/postgres"
	"github.com/bhanmrinal/cf-project/internal/versions"
)

// deps is everything the commands share once the config is resolved.
type deps struct {
	router        *router.Router
	conversations conversation.Store
	versions      *versions.Store
	agents        *agents.Table

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, config *Config, log *zap.Logger) (*deps, error) {
	d := &deps{}

	conversations, backend, err := newStorage(ctx, config.Storage, log, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.conversations = conversations
	d.versions = versions.New(backend, log.Named("versions"))

	generator, err := newGenerator(ctx, config.LLM, log)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("building llm client: %w", err)
	}

	researcher, err := newResearcher(ctx, config.Research, generator, log, d)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("building company research: %w", err)
	}

	agentLog := log.Named("agents")
	d.agents, err = agents.NewTable(agentLog,
		agents.NewGeneralChat(generator, agentLog),
		agents.NewCompanyResearch(generator, researcher, agentLog),
		agents.NewJobMatching(generator, agentLog),
		agents.NewTranslation(generator, agentLog),
	)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("building agent table: %w", err)
	}

	classifier := intent.NewClassifier(generator, log.Named("intent"), intent.Options{
		KeywordRules:  config.Router.KeywordRules,
		StickyContext: config.Router.StickyContext,
		HistoryTurns:  config.Router.HistoryTurns,
		MaxLogLength:  config.LLM.MaxLogLength,
	})

	d.router = router.New(d.conversations, d.versions, classifier, d.agents, log.Named("router"), router.Options{
		HistoryTurns: config.Router.HistoryTurns,
	})

	return d, nil
}

func newStorage(ctx context.Context, cfg *StorageConfig, log *zap.Logger, d *deps) (conversation.Store, versions.Backend, error) {
	if cfg.Driver != storagePostgres {
		log.Info("using in-memory storage", zap.String("hint", "set storage.driver to postgres to keep conversations across restarts"))
		return conversation.NewMemoryStore(), versions.NewMemoryBackend(), nil
	}

	dsn, err := secrets.Load(secrets.Source{
		Name:  "postgres dsn",
		Value: cfg.DSN,
		File:  cfg.DSNFile,
		Env:   "DATABASE_URL",
	})
	if err != nil {
		return nil, nil, err
	}

	db, err := postgres.Connect(ctx, postgres.Config{DSN: dsn, MaxConns: cfg.MaxConns, Migrate: cfg.Migrate}, log.Named("postgres"))
	if err != nil {
		return nil, nil, err
	}
	d.closers = append(d.closers, db.Close)

	log.Info("using postgres storage", zap.Bool("migrate", cfg.Migrate))
	return db.Conversations(), db.Versions(), nil
}

func newGenerator(ctx context.Context, cfg *LLMConfig, log *zap.Logger) (ai.Generator, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var keyEnv string
	switch provider {
	case ai.ProviderGemini:
		keyEnv = "GEMINI_API_KEY"
	case ai.ProviderGroq:
		keyEnv = "GROQ_API_KEY"
	case ai.ProviderOpenAI:
		keyEnv = "OPENAI_API_KEY"
	case ai.ProviderOllama:
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}

	var apiKey string
	if keyEnv != "" {
		key, err := secrets.Load(secrets.Source{
			Name:  provider + " api key",
			Value: cfg.APIKey,
			File:  cfg.APIKeyFile,
			Env:   keyEnv,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set llm.api-key-file, CAREERFLOW_LLM_API_KEY or %s)", err, keyEnv)
		}
		apiKey = key
	}

	genLogger := logger.WithCommonFields(log, provider, cfg.Model).With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	if provider == ai.ProviderGemini {
		generator, err := gemini.NewGenerator(ctx, gemini.Options{
			APIKey:       apiKey,
			Model:        cfg.Model,
			MaxRetries:   cfg.MaxRetries,
			Temperature:  cfg.Temperature,
			MaxLogLength: cfg.MaxLogLength,
		}, genLogger)
		if err != nil {
			return nil, err
		}
		return generator, nil
	}

	model, err := langchain.NewModel(langchain.Options{
		Provider:     provider,
		Model:        cfg.Model,
		APIKey:       apiKey,
		BaseURL:      cfg.BaseURL,
		Temperature:  cfg.Temperature,
		MaxLogLength: cfg.MaxLogLength,
	}, log)
	if err != nil {
		return nil, err
	}
	return model, nil
}

func newResearcher(ctx context.Context, cfg *ResearchConfig, generator ai.Generator, log *zap.Logger, d *deps) (*research.Researcher, error) {
	searchLog := log.Named("research")

	var searcher research.Searcher
	switch cfg.Search {
	case research.ProviderGoogle:
		google := cfg.Google
		if google == nil {
			google = &GoogleConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "google search api key",
			Value: google.APIKey,
			File:  google.APIKeyFile,
			Env:   "GOOGLE_SEARCH_API_KEY",
		})
		if err != nil {
			return nil, err
		}
		if google.CX == "" {
			return nil, fmt.Errorf("research.google.cx is required for google search")
		}
		gs, err := research.NewGoogleSearch(ctx, apiKey, google.CX)
		if err != nil {
			return nil, err
		}
		searcher = gs
	case research.ProviderNone:
		searchLog.Info("web search disabled, company research uses the model only")
	default:
		ddg := research.NewDuckDuckGo(searchLog)
		if cfg.UserAgent != "" {
			ddg.UserAgent = cfg.UserAgent
		}
		searcher = ddg
	}

	return research.NewResearcher(searcher, newCache(ctx, cfg.Cache, searchLog, d), generator, searchLog), nil
}

// newCache prefers redis and falls back to process memory when redis is not
// configured or not reachable.
func newCache(ctx context.Context, cfg *CacheConfig, log *zap.Logger, d *deps) research.Cache {
	if cfg.RedisAddr == "" {
		return research.NewMemoryCache(cfg.TTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis is not reachable, caching company research in memory",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		_ = client.Close()
		return research.NewMemoryCache(cfg.TTL)
	}

	d.closers = append(d.closers, func() { _ = client.Close() })
	log.Info("caching company research in redis", zap.String("addr", cfg.RedisAddr))
	return research.NewRedisCache(client, cfg.TTL)
}
