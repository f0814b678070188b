package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/proctoriq/proctoriq/internal/config"
	"github.com/proctoriq/proctoriq/internal/configs/env"
	"github.com/proctoriq/proctoriq/internal/index"
	"github.com/proctoriq/proctoriq/internal/llm"
	"github.com/proctoriq/proctoriq/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "proctoriq",
	Short:         "Plagiarism and AI-content detection for student submissions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd, compareCmd, indexCmd)
}

// loadConfig reads .env plus the environment and initializes logging.
func loadConfig() (*config.Config, error) {
	_ = env.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// buildClients constructs the optional LLM and index backends. Either can be
// absent; the detector degrades accordingly.
func buildClients(ctx context.Context, cfg *config.Config) (llm.Client, index.Index) {
	var client llm.Client
	if cfg.HasLLM() {
		c, err := llm.NewFromConfig(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("LLM provider unavailable, AI detection disabled")
		} else {
			client = c
		}
	} else {
		log.Info().Msg("no LLM API key configured, AI detection disabled")
	}

	var idx index.Index
	if cfg.HasIndex() {
		i, err := index.NewWeaviate(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("similarity index unavailable, cross-submission check disabled")
		} else {
			idx = i
		}
	} else {
		log.Info().Msg("no index host configured, cross-submission check disabled")
	}

	return client, idx
}
