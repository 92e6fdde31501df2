package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fmuoria/intern-evaluation/internal/config"
	"github.com/fmuoria/intern-evaluation/internal/ingestion"
	"github.com/fmuoria/intern-evaluation/internal/models"
	"github.com/fmuoria/intern-evaluation/internal/query"
)

var (
	renderOut string

	exportOut   string
	exportQuery query.Options

	importSubject string
)

// renderCmd renders record files without storing them
var renderCmd = &cobra.Command{
	Use:   "render <record.json>...",
	Short: "Render evaluation record files as PDF reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		records := make([]models.EvaluationRecord, 0, len(args))
		for _, path := range args {
			rec, err := readRecordFile(path)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}

		out := renderOut
		if out == "" {
			out = cfg.ReportsDir
		}
		a.svc.SetProgressCallback(func(current, total int, message string) {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", current, total, message)
		})
		paths, err := a.svc.RenderToDir(cmd.Context(), records, out)
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return err
	},
}

func readRecordFile(path string) (models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rec, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored evaluations to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := exportQuery.Validate(); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.svc.ExportToFile(cmd.Context(), exportQuery, exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import evaluation records attached to Gmail messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.svc.Import(cmd.Context(), importSubject)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d, duplicates: %d, ignored: %d, failed: %d\n",
			len(result.Imported), len(result.Duplicates), result.Ignored, len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s): %s\n", f.Filename, f.MessageID, f.Reason)
		}
		return nil
	},
}

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorize read-only Gmail access and cache the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return ingestion.AuthorizeGmail(cmd.Context(), cfg.GmailCredentialsPath, cfg.GmailTokenPath, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		var err error
		path := configPath
		if path == "" {
			err = cfg.Save()
			path, _ = config.GetConfigPath()
		} else {
			err = cfg.SaveTo(path)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Output directory (default: reports_dir from config)")

	exportCmd.Flags().StringVar(&exportOut, "out", "evaluations.xlsx", "Output Excel file")
	exportCmd.Flags().StringVar(&exportQuery.Text, "q", "", "Search text matched against intern name and email")
	exportCmd.Flags().StringVar(&exportQuery.Grade, "grade", query.AllGrades, "Grade filter (A+, A, B, C, D, F or all)")
	exportCmd.Flags().StringVar((*string)(&exportQuery.Key), "sort", string(query.SortBySubmittedAt), "Sort key (submitted_at, total, subject_name)")
	exportCmd.Flags().StringVar((*string)(&exportQuery.Direction), "dir", string(query.Descending), "Sort direction (asc, desc)")

	importCmd.Flags().StringVar(&importSubject, "subject", "", "Message subject to search (default: import_subject from config)")

	configCmd.AddCommand(configInitCmd)
}
