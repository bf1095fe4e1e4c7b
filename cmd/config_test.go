package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newTestViper(settings map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range settings {
		v.Set(k, val)
	}
	return v
}

func TestDecodeConfigDefaults(t *testing.T) {
	config, err := decodeConfig(newTestViper(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.LLM.Provider != "gemini" || config.LLM.MaxRetries != 3 {
		t.Fatalf("unexpected llm config %+v", config.LLM)
	}
	if !config.Router.KeywordRules || !config.Router.StickyContext || config.Router.HistoryTurns != 3 {
		t.Fatalf("unexpected router config %+v", config.Router)
	}
	if config.Storage.Driver != storageMemory {
		t.Fatalf("unexpected storage driver %q", config.Storage.Driver)
	}
	if config.Research.Cache.TTL != 7*24*time.Hour {
		t.Fatalf("unexpected cache ttl %v", config.Research.Cache.TTL)
	}
	if config.Server.Listen != ":8000" {
		t.Fatalf("unexpected listen address %q", config.Server.Listen)
	}
}

func TestDecodeConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		want     string
	}{
		{name: "unknown provider", settings: map[string]any{"llm.provider": "bard"}, want: "Provider"},
		{name: "unknown storage", settings: map[string]any{"storage.driver": "sqlite"}, want: "Driver"},
		{name: "unknown search", settings: map[string]any{"research.search": "bing"}, want: "Search"},
		{name: "postgres without dsn", settings: map[string]any{"storage.driver": "postgres"}, want: "storage.dsn"},
		{name: "negative history", settings: map[string]any{"router.history-turns": -1}, want: "HistoryTurns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeConfig(newTestViper(tt.settings))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeConfigDurationFromString(t *testing.T) {
	config, err := decodeConfig(newTestViper(map[string]any{"research.cache.ttl": "12h"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Research.Cache.TTL != 12*time.Hour {
		t.Fatalf("unexpected ttl %v", config.Research.Cache.TTL)
	}
}
