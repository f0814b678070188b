package config

import (
	"fmt"
	"time"

	"github.com/proctoriq/proctoriq/internal/configs/env"
)

// Config holds all configuration for the detection core. It is built once at
// startup and passed into component constructors; nothing reads the
// environment after Load returns.
type Config struct {
	// LLM provider. Groq is preferred when both keys are present; with
	// neither key the detector runs text-similarity-only.
	GroqAPIKey   string
	OpenAIAPIKey string
	Model        string // overrides the provider default when set

	LLMTimeout   time.Duration
	LLMRateLimit float64 // requests per second to the provider; 0 disables

	// Semantic index (cross-submission phase). Empty host disables the phase.
	WeaviateHost   string
	WeaviateScheme string
	WeaviateAPIKey string
	IndexClass     string
	MaxNeighbors   int

	// Similarity thresholds. Empirical constants from the calibration runs,
	// overridable per deployment.
	ReportThreshold   float64 // minimum similarity to report a pair
	FlagThreshold     float64 // similarity above which a match is flagged
	ForensicThreshold float64 // internal pairs above this get an LLM forensic pass
	HighThreshold     float64 // near_exact boundary
	ExactThreshold    float64 // exact boundary

	ChunkSize   int // words per chunk for section matching
	MinMatchLen int // minimum excerpt length for a section match
	MaxEvidence int // evidence items kept per match

	// Logging
	LogLevel  string
	LogPretty bool
}

func Load() (*Config, error) {
	cfg := &Config{}

	cfg.GroqAPIKey = env.GetEnv("GROQ_API_KEY", "")
	cfg.OpenAIAPIKey = env.GetEnv("OPENAI_API_KEY", "")
	cfg.Model = env.GetEnv("LLM_MODEL", "")
	cfg.LLMTimeout = env.GetEnvDuration("LLM_TIMEOUT", 60*time.Second)
	cfg.LLMRateLimit = env.GetEnvFloat("LLM_RATE_LIMIT_RPS", 0)

	cfg.WeaviateHost = env.GetEnv("WEAVIATE_HOST", "")
	cfg.WeaviateScheme = env.GetEnv("WEAVIATE_SCHEME", "http")
	cfg.WeaviateAPIKey = env.GetEnv("WEAVIATE_API_KEY", "")
	cfg.IndexClass = env.GetEnv("INDEX_CLASS", "SubmissionChunk")
	cfg.MaxNeighbors = env.GetEnvInt("MAX_NEIGHBORS", 50)

	cfg.ReportThreshold = env.GetEnvFloat("REPORT_THRESHOLD", 0.40)
	cfg.FlagThreshold = env.GetEnvFloat("FLAG_THRESHOLD", 0.70)
	cfg.ForensicThreshold = env.GetEnvFloat("FORENSIC_THRESHOLD", 0.60)
	cfg.HighThreshold = env.GetEnvFloat("HIGH_THRESHOLD", 0.85)
	cfg.ExactThreshold = env.GetEnvFloat("EXACT_THRESHOLD", 0.95)

	cfg.ChunkSize = env.GetEnvInt("CHUNK_SIZE", 100)
	cfg.MinMatchLen = env.GetEnvInt("MIN_MATCH_LENGTH", 50)
	cfg.MaxEvidence = env.GetEnvInt("MAX_EVIDENCE", 5)

	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogPretty = env.GetEnvBool("LOG_PRETTY", true)

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ReportThreshold < 0 || c.ReportThreshold > 1 {
		return fmt.Errorf("REPORT_THRESHOLD must be in [0,1]")
	}
	if !(c.ReportThreshold <= c.FlagThreshold &&
		c.FlagThreshold <= c.HighThreshold &&
		c.HighThreshold <= c.ExactThreshold) {
		return fmt.Errorf("similarity thresholds must be non-decreasing: report <= flag <= high <= exact")
	}
	if c.ForensicThreshold < c.ReportThreshold {
		return fmt.Errorf("FORENSIC_THRESHOLD must be >= REPORT_THRESHOLD")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if c.MaxNeighbors <= 0 {
		return fmt.Errorf("MAX_NEIGHBORS must be greater than 0")
	}
	if c.WeaviateHost != "" && c.WeaviateScheme != "http" && c.WeaviateScheme != "https" {
		return fmt.Errorf("WEAVIATE_SCHEME must be http or https")
	}
	return nil
}

// HasLLM reports whether any LLM provider is configured.
func (c *Config) HasLLM() bool {
	return c.GroqAPIKey != "" || c.OpenAIAPIKey != ""
}

// HasIndex reports whether the semantic index is configured.
func (c *Config) HasIndex() bool {
	return c.WeaviateHost != ""
}
