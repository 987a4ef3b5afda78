package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/property-cli/internal/ingest"
	"github.com/sells-group/property-cli/internal/normalize"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a listings file without scoring it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		raws, err := ingest.ReadFile(path)
		if err != nil {
			return err
		}

		batch := normalize.NormalizeBatch(raws)
		out := cmd.OutOrStdout()

		for _, item := range batch.Items {
			if item.Err != nil {
				fmt.Fprintf(out, "invalid: %v\n", item.Err)
				continue
			}
			for _, w := range item.Result.Warnings {
				fmt.Fprintf(out, "warning: row %d: %s: %s\n", raws[item.Index].Row, w.Field, w.Message)
			}
		}

		fmt.Fprintf(out, "%d records, %d valid, %d invalid\n", len(raws), batch.Accepted, batch.Rejected)
		if batch.Rejected > 0 {
			return eris.Errorf("validate: %d invalid records in %s", batch.Rejected, path)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("file", "", "listings file (.csv, .xlsx or .json)")
	_ = validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}
