package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/shadowai/shadowdetect/internal/history"
	"github.com/shadowai/shadowdetect/internal/quiz"
	"github.com/shadowai/shadowdetect/internal/server"
)

var (
	serveAddr string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the detector HTTP API",
	Long: `Serve the detector over HTTP.

Endpoints:
  POST /api/check        analyze an inline snippet
  POST /api/analyze      analyze an uploaded file
  GET  /api/history      list recent checks
  GET  /api/stats        aggregate check statistics
  GET  /api/quiz         fetch guessing-game questions
  POST /api/quiz/answer  grade a guess
  GET  /api/health       liveness probe

Examples:
  shadow-detect serve
  shadow-detect serve --addr :9000 --db ./checks.db`,
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDB, "db", "shadow-detect.db", "History database path (empty disables history)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "shadow-detect",
		Level:  serveLogLevel(),
		Output: os.Stderr,
	})

	eng, err := newEngine()
	if err != nil {
		return err
	}

	var store *history.Store
	if serveDB != "" {
		store, err = history.Open(serveDB, logger.Named("history"))
		if err != nil {
			return err
		}
		defer store.Close()
	}

	bank, err := quiz.Load()
	if err != nil {
		return err
	}

	srv := server.New(eng, store, bank, logger.Named("http"))
	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", serveAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func serveLogLevel() hclog.Level {
	if verbose {
		return hclog.Debug
	}
	return hclog.Info
}
