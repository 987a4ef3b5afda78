package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/export"
	"github.com/sells-group/property-cli/internal/ingest"
	"github.com/sells-group/property-cli/internal/portfolio"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Score a listings file and write the ranking to CSV or XLSX",
	Long: `Score a listings file and write every ranked property with its category
points to a spreadsheet. The format follows the output extension: .csv
writes one sheet, .xlsx adds summary, property type and borough sheets.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("file", "", "listings file (.csv, .xlsx or .json)")
	f.String("output", "", "output path ending in .csv or .xlsx")
	_ = exportCmd.MarkFlagRequired("file")
	_ = exportCmd.MarkFlagRequired("output")
	addScoringFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, _ := cmd.Flags().GetString("file")
	outputPath, _ := cmd.Flags().GetString("output")

	ext := strings.ToLower(filepath.Ext(outputPath))
	if ext != ".csv" && ext != ".xlsx" {
		return eris.Errorf("export: --output must end in .csv or .xlsx (got %q)", outputPath)
	}

	scoring, err := scoringFromFlags(cmd, cfg.Scoring)
	if err != nil {
		return err
	}

	env, err := initSession(ctx, "export", scoring)
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
		return eris.Wrap(err, "export: ingest")
	}
	printFailures(cmd.ErrOrStderr(), report.Failures)

	res, err := env.Session.Results(ctx)
	if err != nil {
		return eris.Wrap(err, "export: results")
	}

	switch ext {
	case ".csv":
		w, done, err := openOutput(cmd.OutOrStdout(), outputPath)
		if err != nil {
			return err
		}
		defer done()
		if err := export.WriteCSV(w, res.Ranked, res.Records); err != nil {
			return err
		}
	case ".xlsx":
		summary := portfolio.Aggregate(res.Records, res.Ranked)
		if err := export.WriteXLSX(outputPath, res.Ranked, res.Records, summary); err != nil {
			return err
		}
	}

	zap.L().Info("export complete",
		zap.String("output", outputPath),
		zap.Int("properties", len(res.Ranked)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d properties to %s\n", len(res.Ranked), outputPath)
	return nil
}
