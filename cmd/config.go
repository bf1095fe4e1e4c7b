package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/bhanmrinal/cf-project/internal/ai"
	"github.com/bhanmrinal/cf-project/internal/research"
	"github.com/bhanmrinal/cf-project/internal/server"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
)

type Config struct {
	LLM      *LLMConfig      `mapstructure:"llm" validate:"required"`
	Router   *RouterConfig   `mapstructure:"router" validate:"required"`
	Storage  *StorageConfig  `mapstructure:"storage" validate:"required"`
	Research *ResearchConfig `mapstructure:"research" validate:"required"`
	Server   *server.Config  `mapstructure:"server" validate:"required"`
}

type LLMConfig struct {
	Provider     string   `mapstructure:"provider" validate:"oneof=gemini groq openai ollama"`
	Model        string   `mapstructure:"model"`
	APIKey       string   `mapstructure:"api-key"`
	APIKeyFile   string   `mapstructure:"api-key-file"`
	BaseURL      string   `mapstructure:"base-url"`
	MaxRetries   int      `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Temperature  *float32 `mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxLogLength int      `mapstructure:"max-log-length" validate:"gte=0"`
}

type RouterConfig struct {
	HistoryTurns  int  `mapstructure:"history-turns" validate:"gte=0,lte=50"`
	KeywordRules  bool `mapstructure:"keyword-rules"`
	StickyContext bool `mapstructure:"sticky-context"`
}

type StorageConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=memory postgres"`
	DSN      string `mapstructure:"dsn"`
	DSNFile  string `mapstructure:"dsn-file"`
	MaxConns int32  `mapstructure:"max-conns" validate:"gte=0"`
	Migrate  bool   `mapstructure:"migrate"`
}

type ResearchConfig struct {
	Search    string        `mapstructure:"search" validate:"oneof=duckduckgo google none"`
	UserAgent string        `mapstructure:"user-agent"`
	Google    *GoogleConfig `mapstructure:"google"`
	Cache     *CacheConfig  `mapstructure:"cache" validate:"required"`
}

type GoogleConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	CX         string `mapstructure:"cx"`
}

type CacheConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gte=0"`
	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db" validate:"gte=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ai.ProviderGemini)
	v.SetDefault("llm.max-retries", 3)
	v.SetDefault("llm.max-log-length", 200)
	v.SetDefault("llm.api-key", "")
	v.SetDefault("llm.model", "")

	v.SetDefault("router.history-turns", 3)
	v.SetDefault("router.keyword-rules", true)
	v.SetDefault("router.sticky-context", true)

	v.SetDefault("storage.driver", storageMemory)
	v.SetDefault("storage.migrate", true)
	v.SetDefault("storage.dsn", "")

	v.SetDefault("research.search", research.ProviderDuckDuckGo)
	v.SetDefault("research.cache.ttl", 7*24*time.Hour)
	v.SetDefault("research.cache.redis-addr", "")
	v.SetDefault("research.google.api-key", "")
	v.SetDefault("research.google.cx", "")

	v.SetDefault("server.listen", ":8000")
	v.SetDefault("server.body-limit", 1<<20)
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, fmt.Errorf("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Storage.Driver == storagePostgres && config.Storage.DSN == "" && config.Storage.DSNFile == "" {
		return nil, fmt.Errorf("invalid config: storage.dsn or storage.dsn-file is required for the postgres driver")
	}
	return config, nil
}
