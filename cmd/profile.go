package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/property-cli/internal/scorer"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved weight profiles",
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <path>",
	Short: "Write the effective scoring settings to a YAML profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scoring, err := scoringFromFlags(cmd, cfg.Scoring)
		if err != nil {
			return err
		}
		if err := scorer.SaveProfile(args[0], scoring); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile to %s\n", args[0])
		return nil
	},
}

func init() {
	addScoringFlags(profileSaveCmd)
	profileCmd.AddCommand(profileSaveCmd)
	rootCmd.AddCommand(profileCmd)
}
