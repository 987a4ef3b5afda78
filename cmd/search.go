package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/property-cli/internal/ingest"
)

var searchCmd = &cobra.Command{
	Use:   "search-urls",
	Short: "Print listing site search URLs for the reference area",
	RunE: func(cmd *cobra.Command, _ []string) error {
		scoring, err := scoringFromFlags(cmd, cfg.Scoring)
		if err != nil {
			return err
		}
		radius, _ := cmd.Flags().GetInt("radius")

		urls := ingest.SearchURLs(scoring.ReferencePostcode, ingest.SearchParams{
			MinPrice:    scoring.BudgetMin,
			MaxPrice:    scoring.BudgetMax,
			MinBedrooms: scoring.MinBedrooms,
			RadiusMiles: radius,
		})

		sites := make([]string, 0, len(urls))
		for site := range urls {
			sites = append(sites, site)
		}
		sort.Strings(sites)
		for _, site := range sites {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", site, urls[site])
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("radius", 1, "search radius in miles")
	addScoringFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
