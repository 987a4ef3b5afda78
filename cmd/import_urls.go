package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/ingest"
)

var importURLsCmd = &cobra.Command{
	Use:   "import-urls [url...]",
	Short: "Scrape listing pages and rank them",
	Long: `Fetch Rightmove, Zoopla, OnTheMarket or other listing pages, extract the
price, bedrooms and address, then score and rank the results.

URLs come from the arguments, --urls and --urls-file (one per line). Pages that
cannot be fetched or parsed are reported and skipped.`,
	RunE: runImportURLs,
}

func init() {
	f := importURLsCmd.Flags()
	f.StringSlice("urls", nil, "comma-separated listing URLs")
	f.String("urls-file", "", "file with one listing URL per line")
	f.Int("top", 0, "show only the top N properties (0=all)")
	f.String("format", "table", "output format: table or csv")
	f.String("output", "", "output file path (default: stdout)")
	addScoringFlags(importURLsCmd)

	rootCmd.AddCommand(importURLsCmd)
}

func runImportURLs(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	urlsFile, _ := cmd.Flags().GetString("urls-file")
	top, _ := cmd.Flags().GetInt("top")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	listed, _ := cmd.Flags().GetStringSlice("urls")

	urls := append(append([]string{}, args...), listed...)
	if urlsFile != "" {
		fromFile, err := readURLs(urlsFile)
		if err != nil {
			return err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return eris.New("import-urls: no listing URLs given")
	}

	scoring, err := scoringFromFlags(cmd, cfg.Scoring)
	if err != nil {
		return err
	}

	env, err := initSession(ctx, "import", scoring)
	if err != nil {
		return err
	}
	defer env.Close()

	importer, err := ingest.NewListingImporter(cfg.Import)
	if err != nil {
		return err
	}

	results, err := importer.Import(ctx, urls)
	if err != nil {
		return eris.Wrap(err, "import-urls: fetch")
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", r.URL, r.Err)
		}
	}

	report, err := env.Session.Ingest(ctx, ingest.Raws(results))
	if err != nil {
		return eris.Wrap(err, "import-urls: ingest")
	}
	printFailures(cmd.ErrOrStderr(), report.Failures)

	res, err := env.Session.Results(ctx)
	if err != nil {
		return eris.Wrap(err, "import-urls: results")
	}

	zap.L().Info("import complete",
		zap.Int("urls", len(urls)),
		zap.Int("imported", len(report.Accepted)),
	)
	w, done, err := openOutput(cmd.OutOrStdout(), outputPath)
	if err != nil {
		return err
	}
	defer done()
	return writeRanking(w, res, top, format)
}

// readURLs returns the non-blank, non-comment lines of path.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "import-urls: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(err, "import-urls: read %s", path)
	}
	return urls, nil
}
