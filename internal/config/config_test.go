package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		WeaviateScheme:    "http",
		ReportThreshold:   0.40,
		FlagThreshold:     0.70,
		ForensicThreshold: 0.60,
		HighThreshold:     0.85,
		ExactThreshold:    0.95,
		ChunkSize:         100,
		MinMatchLen:       50,
		MaxEvidence:       5,
		MaxNeighbors:      50,
		LLMTimeout:        60 * time.Second,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejectsUnorderedThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.FlagThreshold = 0.30 // below report threshold
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.ExactThreshold = 0.80 // below high threshold
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeReport(t *testing.T) {
	cfg := validConfig()
	cfg.ReportThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsLowForensic(t *testing.T) {
	cfg := validConfig()
	cfg.ForensicThreshold = 0.10
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadScheme(t *testing.T) {
	cfg := validConfig()
	cfg.WeaviateHost = "localhost:8080"
	cfg.WeaviateScheme = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.40, cfg.ReportThreshold)
	assert.Equal(t, 0.70, cfg.FlagThreshold)
	assert.Equal(t, "SubmissionChunk", cfg.IndexClass)
	assert.Equal(t, 100, cfg.ChunkSize)
	assert.True(t, cfg.LogPretty)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REPORT_THRESHOLD", "0.55")
	t.Setenv("MAX_NEIGHBORS", "10")
	t.Setenv("WEAVIATE_HOST", "weaviate:8080")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.55, cfg.ReportThreshold)
	assert.Equal(t, 10, cfg.MaxNeighbors)
	assert.True(t, cfg.HasIndex())
	assert.False(t, cfg.HasLLM())
	assert.False(t, cfg.LogPretty)
}
