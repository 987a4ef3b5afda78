package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/ingest"
	"github.com/sells-group/property-cli/internal/portfolio"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank properties from a CSV, XLSX or JSON file",
	Long: `Score every valid listing in a file against the reference settings and
print the ranking.

Invalid rows are reported and skipped. Commute and grammar school distances
missing from the file are resolved against the reference postcode.

Examples:
  # Rank a spreadsheet with the configured settings
  score --file listings.xlsx

  # Top 10, favouring commute, as CSV
  score --file listings.csv --top 10 --weight-commute 0.4 --format csv

  # Apply a saved profile
  score --file listings.json --profile family.yaml`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("file", "", "listings file (.csv, .xlsx or .json)")
	f.Int("top", 0, "show only the top N properties (0=all)")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	_ = scoreCmd.MarkFlagRequired("file")
	addScoringFlags(scoreCmd)

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, _ := cmd.Flags().GetString("file")
	top, _ := cmd.Flags().GetInt("top")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "csv" {
		return eris.Errorf("score: --format must be table or csv (got %q)", format)
	}
	if top < 0 {
		return eris.Errorf("score: --top must be >= 0 (got %d)", top)
	}

	scoring, err := scoringFromFlags(cmd, cfg.Scoring)
	if err != nil {
		return err
	}

	env, err := initSession(ctx, "score", scoring)
	if err != nil {
		return err
	}
	defer env.Close()

	raws, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}

	report, err := env.Session.Ingest(ctx, raws)
	if err != nil {
		return eris.Wrap(err, "score: ingest")
	}
	printFailures(cmd.ErrOrStderr(), report.Failures)

	res, err := env.Session.Results(ctx)
	if err != nil {
		return eris.Wrap(err, "score: results")
	}

	zap.L().Info("scoring complete",
		zap.String("file", path),
		zap.Int("scored", len(res.Ranked)),
		zap.Int("rejected", len(report.Failures)),
	)

	w, done, err := openOutput(cmd.OutOrStdout(), outputPath)
	if err != nil {
		return err
	}
	defer done()

	if err := writeRanking(w, res, top, format); err != nil {
		return eris.Wrap(err, "score: write ranking")
	}
	if format == "table" {
		printSummary(w, portfolio.Aggregate(res.Records, res.Ranked))
	}
	if outputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d properties to %s\n", len(res.Ranked), outputPath)
	}
	return nil
}
