package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/proctoriq/proctoriq/internal/models"
	"github.com/proctoriq/proctoriq/internal/plagiarism"
)

var checkFlags struct {
	id      string
	student string
	kind    string
	format  string
	out     string
}

var checkCmd = &cobra.Command{
	Use:   "check <file-or-directory>",
	Short: "Run the full detection pipeline on a submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFlags.id, "id", "", "submission id (generated when empty)")
	checkCmd.Flags().StringVar(&checkFlags.student, "student", "unknown", "student name")
	checkCmd.Flags().StringVar(&checkFlags.kind, "kind", "", "submission kind: code, writeup or mixed (inferred when empty)")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "markdown", "output format: markdown or json")
	checkCmd.Flags().StringVar(&checkFlags.out, "out", "", "write the report to a file instead of stdout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sub, err := loadSubmission(args[0], checkFlags.id, checkFlags.student, checkFlags.kind)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, idx := buildClients(ctx, cfg)
	detector := plagiarism.NewDetector(cfg, client, idx)

	runCtx, cancel := context.WithTimeout(ctx, cfg.LLMTimeout)
	defer cancel()

	report, err := detector.Check(runCtx, sub)
	if err != nil {
		return fmt.Errorf("check submission: %w", err)
	}

	var output []byte
	switch checkFlags.format {
	case "json":
		output, err = plagiarism.ExportJSON(report)
		if err != nil {
			return err
		}
	case "markdown":
		output = []byte(plagiarism.RenderMarkdown(report))
	default:
		return fmt.Errorf("unknown format %q", checkFlags.format)
	}

	if checkFlags.out != "" {
		return os.WriteFile(checkFlags.out, output, 0o644)
	}
	fmt.Println(string(output))
	return nil
}

// codeExtensions are treated as code for kind inference.
var codeExtensions = map[string]bool{
	".py": true, ".go": true, ".js": true, ".ts": true, ".java": true,
	".c": true, ".cpp": true, ".h": true, ".cs": true, ".rb": true,
	".rs": true, ".php": true, ".swift": true, ".kt": true, ".sql": true,
	".html": true, ".css": true, ".sh": true,
}

func loadSubmission(path, id, student, kind string) (models.Submission, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Submission{}, fmt.Errorf("read submission: %w", err)
	}

	sub := models.Submission{
		ID:      id,
		Student: student,
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && p != path {
					return filepath.SkipDir
				}
				return nil
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(path, p)
			if err != nil {
				rel = d.Name()
			}
			sub.Files = append(sub.Files, models.SubmissionFile{Name: rel, Content: string(data)})
			return nil
		})
		if err != nil {
			return models.Submission{}, fmt.Errorf("read submission directory: %w", err)
		}
		sort.Slice(sub.Files, func(i, j int) bool { return sub.Files[i].Name < sub.Files[j].Name })
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return models.Submission{}, fmt.Errorf("read submission file: %w", err)
		}
		sub.Files = []models.SubmissionFile{{Name: filepath.Base(path), Content: string(data)}}
	}

	if len(sub.Files) == 0 {
		return models.Submission{}, fmt.Errorf("submission %s contains no files", path)
	}

	sub.Kind = resolveKind(kind, sub.Files)
	return sub, nil
}

func resolveKind(kind string, files []models.SubmissionFile) models.SubmissionKind {
	switch models.SubmissionKind(kind) {
	case models.KindCode, models.KindWriteup, models.KindMixed:
		return models.SubmissionKind(kind)
	}

	code, text := 0, 0
	for _, f := range files {
		if codeExtensions[strings.ToLower(filepath.Ext(f.Name))] {
			code++
		} else {
			text++
		}
	}
	switch {
	case code > 0 && text > 0:
		return models.KindMixed
	case code > 0:
		return models.KindCode
	default:
		return models.KindWriteup
	}
}
