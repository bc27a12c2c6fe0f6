package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/api"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/engine"
	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/question"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine over HTTP",
	Long:  "Loads the corpus named by QBANK_CORPUS (a .env file is honored) and serves the selection API until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("corpus"); p != "" {
			cfg.CorpusPath = p
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	corpus, report, err := question.LoadCorpus(cfg.CorpusPath)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	for _, w := range report.Warnings {
		log.Warn("corpus warning", "detail", w)
	}
	for _, e := range report.Errors {
		log.Warn("corpus record rejected", "index", e.Index, "id", e.ID, "err", e.Err)
	}
	log.Info("corpus loaded",
		"path", cfg.CorpusPath,
		"questions", corpus.Len(),
		"rejected", len(report.Errors),
	)

	eng := engine.New(corpus, engine.WithLogger(log))
	router := api.NewRouter(api.NewHandler(eng, log))

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
