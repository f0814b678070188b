package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/proctoriq/proctoriq/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the cross-submission similarity index",
}

var indexPutFlags struct {
	id      string
	student string
	kind    string
}

var indexPutCmd = &cobra.Command{
	Use:   "put <file-or-directory>",
	Short: "Add a submission to the similarity index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexPut,
}

func init() {
	indexPutCmd.Flags().StringVar(&indexPutFlags.id, "id", "", "submission id (generated when empty)")
	indexPutCmd.Flags().StringVar(&indexPutFlags.student, "student", "unknown", "student name")
	indexPutCmd.Flags().StringVar(&indexPutFlags.kind, "kind", "", "submission kind: code, writeup or mixed (inferred when empty)")
	indexCmd.AddCommand(indexPutCmd)
}

func runIndexPut(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.HasIndex() {
		return fmt.Errorf("WEAVIATE_HOST is not configured")
	}

	sub, err := loadSubmission(args[0], indexPutFlags.id, indexPutFlags.student, indexPutFlags.kind)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	idx, err := index.NewWeaviate(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to index: %w", err)
	}

	if err := idx.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("index submission: %w", err)
	}

	log.Info().Str("submission", sub.ID).Str("student", sub.Student).Msg("submission indexed")
	fmt.Println(sub.ID)
	return nil
}
