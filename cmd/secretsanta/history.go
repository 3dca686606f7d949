package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/secretsanta/internal/config"
	"github.com/nao1215/secretsanta/internal/history"
	"github.com/nao1215/secretsanta/internal/report"
)

// defaultHistoryLimit is the number of submissions listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [submission-id]",
		Short: "Show recorded submissions",
		Long: `History lists earlier submissions, newest first, with their outcome,
the saved result file and its SHA3-256 digest (--verbose).

Examples:
  # Last 20 submissions
  secretsanta history

  # One submission as JSON
  secretsanta history --json 7f0c1d52-3f7e-4c37-9d0a-6c1b8f1a2e11

  # Markdown summary written to a file
  secretsanta history --markdown -n 0 -o santa-history.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of submissions to list (0 lists all)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")

	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if err := cfg.ValidateReportFormat(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := setIfChanged(cmd.Flags(), "db-dir", &cfg.DBDir); err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	records, err := loadHistory(cmd, cfg.DBDir, args, limit)
	if err != nil {
		return err
	}

	if outputPath == "" {
		if _, err := newReportWriter(cfg, cmd.OutOrStdout()).Write(records); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}
	return writeHistoryFile(cmd, cfg, outputPath, records)
}

// writeHistoryFile writes the report to path. A JSON or Markdown report is
// also listed as plain text on stdout.
func writeHistoryFile(cmd *cobra.Command, cfg *config.Config, path string, records []*history.Record) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-provided output path
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	var w report.Writer = newReportWriter(cfg, f)
	if cfg.JSONReport || cfg.MarkdownReport {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose)))
	}
	if _, err := w.Write(records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	return nil
}

// loadHistory reads the requested records. A missing database is an empty history.
func loadHistory(cmd *cobra.Command, dbDir string, args []string, limit int) ([]*history.Record, error) {
	store, err := history.Open(dbDir, history.Options{CreateIfNotExists: false})
	if errors.Is(err, history.ErrNotFound) {
		if len(args) > 0 {
			return nil, fmt.Errorf("submission not found: %s", args[0])
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx := cmd.Context()
	if len(args) == 0 {
		return store.List(ctx, limit)
	}

	r, err := store.Get(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("submission not found: %s", args[0])
	}
	return []*history.Record{r}, nil
}

func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}
