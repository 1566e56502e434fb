package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "./data/hr-assistant.db", cfg.DBPath)
	assert.True(t, cfg.ArchiveEnabled)
	assert.Equal(t, ExtractorRules, cfg.Extractor.Provider)
	assert.Equal(t, 10*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, "gpt-4", cfg.OpenAI.Model)
	assert.Equal(t, PhrasingTemplate, cfg.Chat.PhrasingProvider)
	assert.InDelta(t, 0.7, cfg.Chat.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 4, cfg.Chat.HistoryWindow)
	assert.Equal(t, "replace", cfg.Chat.PendingPolicy)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodyBytes)
	assert.Equal(t, "demo_user", cfg.DefaultUserID)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "https://hr.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("EXTRACTOR_PROVIDER", "GRPC")
	t.Setenv("EXTRACTOR_GRPC_ADDR", "localhost:50051")
	t.Setenv("EXTRACTOR_TIMEOUT", "3s")
	t.Setenv("PENDING_POLICY", "reject")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ExtractorGRPC, cfg.Extractor.Provider)
	assert.Equal(t, 3*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, "reject", cfg.Chat.PendingPolicy)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com", "https://hr.example.com"},
		cfg.AllowedOrigins())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"openai without key":   {"EXTRACTOR_PROVIDER": "openai"},
		"grpc without addr":    {"EXTRACTOR_PROVIDER": "grpc"},
		"unknown provider":     {"EXTRACTOR_PROVIDER": "carrier-pigeon"},
		"phrasing without key": {"PHRASING_PROVIDER": "openai"},
		"threshold too high":   {"CONFIDENCE_THRESHOLD": "1.5"},
		"bad policy":           {"PENDING_POLICY": "queue"},
		"zero window":          {"HISTORY_WINDOW": "0"},
		"bad duration":         {"EXTRACTOR_TIMEOUT": "soon"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
