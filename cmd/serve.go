package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/property-cli/internal/ingest"
	"github.com/sells-group/property-cli/internal/server"
)

var (
	servePort int
	serveFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the property analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		scoring, err := scoringFromFlags(cmd, cfg.Scoring)
		if err != nil {
			return err
		}

		env, err := initSession(ctx, "serve", scoring)
		if err != nil {
			return err
		}
		defer env.Close()

		if serveFile != "" {
			raws, err := ingest.ReadFile(serveFile)
			if err != nil {
				return err
			}
			report, err := env.Session.Ingest(ctx, raws)
			if err != nil {
				return eris.Wrap(err, "serve: seed session")
			}
			zap.L().Info("seeded session",
				zap.String("file", serveFile),
				zap.Int("accepted", len(report.Accepted)),
				zap.Int("rejected", len(report.Failures)),
			)
		}

		api, err := server.New(env.Session, cfg.Server)
		if err != nil {
			return err
		}
		srv := api.HTTPServer(fmt.Sprintf(":%d", cfg.Server.Port))

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveFile, "file", "", "listings file to load at startup")
	addScoringFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}
