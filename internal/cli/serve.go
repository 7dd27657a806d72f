package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rvelikov/fallax/internal/api"
	"github.com/rvelikov/fallax/internal/pipeline"
	"github.com/rvelikov/fallax/pkg/logging"
)

var (
	servePort    string
	serveNoCache bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP server",
	Long: `Serve exposes the fallacy pipeline over HTTP:
- POST /api/analyze  analyze a text
- GET  /health       liveness probe
- GET  /metrics      Prometheus metrics

Example:
  fallax serve --port 8080 --llm-provider ollama --llm-model llama3.1:8b`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "8080", "listen port")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "disable the in-memory result cache")

	// Pipeline flags shared with analyze
	serveCmd.Flags().IntVar(&minConfidence, "min-confidence", 0, "default confidence filter for requests without one")
	serveCmd.Flags().BoolVar(&noRewrite, "no-rewrite", false, "default to skipping the balanced rewrite")
	serveCmd.Flags().DurationVar(&budget, "budget", 10*time.Second, "wall-clock budget per analysis")
	serveCmd.Flags().BoolVar(&noLangGate, "no-language-gate", false, "skip the English-likeness check")

	// LLM flags
	serveCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "reasoning provider (openai, anthropic, ollama)")
	serveCmd.Flags().StringVar(&llmModel, "llm-model", "", "reasoning model name")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Server.Port = servePort
	cfg.Cache.Enabled = !serveNoCache
	cfg.Pipeline.MinConfidence = minConfidence
	cfg.Pipeline.IncludeRewrite = !noRewrite

	logger := logging.New(verbose)
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}

	handler := api.NewHandler(p, cfg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Pipeline.Budget + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
