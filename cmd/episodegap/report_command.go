package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"episodegap/internal/config"
	"episodegap/internal/report"
	"episodegap/internal/runner"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var libraries []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare Plex TV libraries with TheTVDB and write the xlsx report",
		Long: "Walks every Plex TV library (or the ones given with --library), looks each show up on\n" +
			"TheTVDB, and writes one spreadsheet row per canonical episode. Press Ctrl+C to stop after\n" +
			"the current show; the report is still written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyReportOverrides(cfg, outputPath, libraries); err != nil {
				return err
			}

			logger, closeLog, err := ctx.newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer closeLog()

			signalCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			outcome, rep, runErr := runner.Execute(signalCtx, cfg, logger)
			if rep == nil {
				return runErr
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(cmd, reportSummaryJSON(cfg.Report.Path, outcome, rep.Summary())); err != nil {
					return err
				}
			} else {
				printReportSummary(out, cfg.Report.Path, outcome, rep.Summary(), shouldColorize(out))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to this .xlsx path instead of report.path")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Only process this Plex library (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func applyReportOverrides(cfg *config.Config, outputPath string, libraries []string) error {
	if path := strings.TrimSpace(outputPath); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return fmt.Errorf("resolve output path: %w", err)
		}
		cfg.Report.Path = expanded
	}
	if len(libraries) > 0 {
		cfg.Plex.Libraries = libraries
	}
	return cfg.Validate()
}

func printReportSummary(out io.Writer, path string, outcome runner.Outcome, summary []report.LibrarySummary, colorize bool) {
	if outcome.Interrupted {
		line := "Interrupted: report contains the shows processed before the stop request"
		if colorize {
			line = ansiRed + line + ansiReset
		}
		fmt.Fprintln(out, line)
	}
	if len(summary) == 0 {
		fmt.Fprintln(out, "No TV shows processed")
	} else {
		headers := []string{"Library", "Shows", "Episodes", "Missing", "Duplicates", "Not found", "Errors"}
		aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
		var total report.LibrarySummary
		rows := make([][]string, 0, len(summary))
		for _, s := range summary {
			rows = append(rows, []string{
				s.Library,
				strconv.Itoa(s.Shows),
				strconv.Itoa(s.Episodes),
				strconv.Itoa(s.Missing),
				strconv.Itoa(s.Duplicates),
				strconv.Itoa(s.NotFound),
				strconv.Itoa(s.Errors),
			})
			total.Shows += s.Shows
			total.Episodes += s.Episodes
			total.Missing += s.Missing
			total.Duplicates += s.Duplicates
			total.NotFound += s.NotFound
			total.Errors += s.Errors
		}
		footer := []string{
			"Total",
			strconv.Itoa(total.Shows),
			strconv.Itoa(total.Episodes),
			strconv.Itoa(total.Missing),
			strconv.Itoa(total.Duplicates),
			strconv.Itoa(total.NotFound),
			strconv.Itoa(total.Errors),
		}
		fmt.Fprintln(out, renderTable(headers, rows, aligns, footer))
	}
	fmt.Fprintf(out, "Report: %s\n", path)
	if outcome.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s (%s)\n", outcome.RunID, outcome.Duration.Round(time.Millisecond))
	}
}

type reportSummaryOutput struct {
	RunID       string                 `json:"run_id"`
	ReportPath  string                 `json:"report_path"`
	Interrupted bool                   `json:"interrupted"`
	DurationMS  int64                  `json:"duration_ms"`
	Libraries   []librarySummaryOutput `json:"libraries"`
}

type librarySummaryOutput struct {
	Library    string `json:"library"`
	Shows      int    `json:"shows"`
	Episodes   int    `json:"episodes"`
	Missing    int    `json:"missing"`
	Duplicates int    `json:"duplicates"`
	NotFound   int    `json:"not_found"`
	Errors     int    `json:"errors"`
}

func reportSummaryJSON(path string, outcome runner.Outcome, summary []report.LibrarySummary) reportSummaryOutput {
	libs := make([]librarySummaryOutput, 0, len(summary))
	for _, s := range summary {
		libs = append(libs, librarySummaryOutput{
			Library:    s.Library,
			Shows:      s.Shows,
			Episodes:   s.Episodes,
			Missing:    s.Missing,
			Duplicates: s.Duplicates,
			NotFound:   s.NotFound,
			Errors:     s.Errors,
		})
	}
	return reportSummaryOutput{
		RunID:       outcome.RunID,
		ReportPath:  path,
		Interrupted: outcome.Interrupted,
		DurationMS:  outcome.Duration.Milliseconds(),
		Libraries:   libs,
	}
}
