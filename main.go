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
	"go.uber.org/zap"

	"github.com/fmuoria/intern-evaluation/internal/api"
	"github.com/fmuoria/intern-evaluation/internal/config"
	"github.com/fmuoria/intern-evaluation/internal/ingestion"
	"github.com/fmuoria/intern-evaluation/internal/layout"
	"github.com/fmuoria/intern-evaluation/internal/llm"
	"github.com/fmuoria/intern-evaluation/internal/logging"
	"github.com/fmuoria/intern-evaluation/internal/render"
	"github.com/fmuoria/intern-evaluation/internal/report"
	"github.com/fmuoria/intern-evaluation/internal/service"
	"github.com/fmuoria/intern-evaluation/internal/store"
)

var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "intern-evaluation",
	Short: "Score internship evaluations and render their reports",
	Long: `Intern evaluation scoring and report pipeline.

Evaluation records are scored on ten criteria, stored, browsed with
search/filter/sort, rendered as paginated PDF reports and exported to Excel.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/InternEvaluation/config.json)")
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app holds the wired components shared by the commands
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.RecordSource
	backend *render.Backend
	svc     *service.Service
	closers []func() error
}

// newApp wires the service. Optional features (Gmail import, comment
// drafting) are left disabled when their setup fails, unless required.
func newApp(ctx context.Context, cfg *config.Config, requireGmail bool) (*app, error) {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	cfg.ApplyToEnv()

	st, err := store.Open(ctx, store.Driver(cfg.StoreDriver), cfg.RecordsDir, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, store: st, closers: []func() error{st.Close}}

	a.backend = render.NewBackend("pdf", render.PDFLoader(layout.A4), logger)
	renderer := report.NewRenderer(a.backend, report.Options{
		ReportKind:  cfg.ReportKind,
		Attribution: cfg.Attribution,
	}, logger)

	opts := service.Options{ImportSubject: cfg.ImportSubject}

	gmail, err := ingestion.NewGmailHandler(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath, logger)
	switch {
	case err == nil:
		opts.Importer = ingestion.NewImporter(gmail, st, logger)
	case requireGmail:
		a.Close()
		return nil, err
	default:
		logger.Info("Gmail import disabled", zap.Error(err))
	}

	if cfg.GoogleCloudProject != "" {
		client, err := llm.NewVertexAIClient(ctx, cfg.GoogleCloudProject, cfg.GoogleCloudLocation, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Comment drafting disabled", zap.Error(err))
		} else {
			opts.Drafter = llm.NewCommentDrafter(client)
			a.closers = append(a.closers, client.Close)
		}
	}

	a.svc = service.New(st, renderer, logger, opts)
	return a, nil
}

// Close releases the store and clients
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		// A failed load is retried on the first render
		if err := a.backend.Init(ctx); err != nil {
			a.logger.Warn("Rendering backend not ready", zap.Error(err))
		}

		server := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           api.NewServer(a.svc, a.logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("Starting Internship Evaluation API", zap.String("port", cfg.Port))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed to start: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(gmailAuthCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
