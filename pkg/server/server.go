// Package server is the composition root for the POS Insight service: it
// loads configuration, wires the stores, completion client, workflow engine,
// and HTTP router, and hands back a ready-to-serve handler.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/posinsight/posinsight/internal/api"
	"github.com/posinsight/posinsight/internal/api/handlers"
	"github.com/posinsight/posinsight/internal/cache"
	"github.com/posinsight/posinsight/internal/config"
	"github.com/posinsight/posinsight/internal/llm"
	"github.com/posinsight/posinsight/internal/notify"
	"github.com/posinsight/posinsight/internal/retention"
	"github.com/posinsight/posinsight/internal/sessions"
	"github.com/posinsight/posinsight/internal/telemetry"
	"github.com/posinsight/posinsight/internal/workflow"
)

// Server holds the initialized service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Reports is the report cache; exposed so main can close it.
	Reports cache.ReportCache

	// Config is the loaded configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc flushes telemetry on graceful shutdown.
	ShutdownFunc func(context.Context) error
}

// New initializes all components and returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	reports := cache.NewMemoryCache()
	sessionStore := sessions.NewMemoryStore()

	client := llm.New(llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	notifier := notify.NewService(cfg.Notify.WebhookURL, cfg.Notify.WebhookSecret)
	engine := workflow.NewEngine(client, reports).
		WithNotifier(notifier).
		WithReportTTL(cfg.Cache.ReportTTL)

	janitor := retention.NewJanitor(sessionStore, cfg.Sessions.IdleTTL, cfg.Sessions.SweepInterval)
	go janitor.Start(ctx)

	log.Info().Str("model", cfg.LLM.Model).Msg("Completion client initialized")
	log.Info().Bool("webhook", notifier.Enabled()).Msg("Workflow engine initialized")

	h := handlers.New(sessionStore, reports, engine, client)
	router := api.NewRouter(h)

	return &Server{
		Handler:      router,
		Reports:      reports,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
