package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/config"
)

var (
	cfg *config.Config

	cfgFile  string
	storeDSN string
)

var rootCmd = &cobra.Command{
	Use:   "property-cli",
	Short: "Score and rank London property listings",
	Long:  "Normalizes property listings, resolves commute and school distances against a reference postcode, scores them on weighted criteria and ranks the portfolio.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if storeDSN != "" {
			c.Store.DSN = storeDSN
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	pf.StringVar(&storeDSN, "db", "", "SQLite session database; keeps the session on disk (default in memory)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
