package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proctoriq/proctoriq/internal/plagiarism"
)

var compareAsCode bool

var compareCmd = &cobra.Command{
	Use:   "compare <file-a> <file-b>",
	Short: "Quick similarity check between two files, no LLM and no index",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareAsCode, "code", false, "use the code-aware blended score")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	b, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	th := plagiarism.Thresholds{
		Report:   cfg.ReportThreshold,
		Low:      cfg.FlagThreshold,
		Medium:   cfg.FlagThreshold,
		High:     cfg.HighThreshold,
		Exact:    cfg.ExactThreshold,
		Forensic: cfg.ForensicThreshold,
	}

	var result any
	if compareAsCode {
		result = plagiarism.CodeSimilarity(th, string(a), string(b))
	} else {
		detector := plagiarism.NewDetector(cfg, nil, nil)
		result = detector.QuickCheck(string(a), string(b))
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
