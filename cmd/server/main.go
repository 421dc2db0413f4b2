package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DevSidd2006/learnquest/internal/config"
	"github.com/DevSidd2006/learnquest/internal/database"
	"github.com/DevSidd2006/learnquest/internal/generator"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/scheduler"
	"github.com/DevSidd2006/learnquest/internal/storage"
	"github.com/DevSidd2006/learnquest/internal/tts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "LearnQuest API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	})
	return root
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.UsingDevSecret() {
		log.Warn("JWT_SECRET not set, signing tokens with the development key")
	}

	store := storage.Open(ctx, cfg, log)
	defer store.Close()

	gen, err := generator.NewGenerator(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init content generator: %w", err)
	}

	var synth tts.Synthesizer
	if cfg.TTSAPIKey != "" {
		g, err := tts.NewGoogleSynthesizer(ctx, cfg.TTSAPIKey)
		if err != nil {
			return err
		}
		synth = g
	} else {
		log.Warn("no TTS_API_KEY or GEMINI_API_KEY, text-to-speech disabled")
	}

	app := newApp(cfg, log, store, gen, synth)

	sched := scheduler.New(app.auth, cfg.SessionCleanupInterval, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "storage", store.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func runMigrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		return err
	}
	log.Info("migrations applied", "version", version, "dirty", dirty)
	return nil
}
