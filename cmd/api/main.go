package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casablancax/travel-ai-platform/internal/api/router"
	"github.com/casablancax/travel-ai-platform/internal/caspio"
	appconfig "github.com/casablancax/travel-ai-platform/internal/config"
	"github.com/casablancax/travel-ai-platform/internal/customer"
	"github.com/casablancax/travel-ai-platform/internal/kb"
	"github.com/casablancax/travel-ai-platform/internal/leads"
	"github.com/casablancax/travel-ai-platform/internal/livecall"
	"github.com/casablancax/travel-ai-platform/internal/memos"
	"github.com/casablancax/travel-ai-platform/internal/notify"
	"github.com/casablancax/travel-ai-platform/internal/observability/metrics"
	"github.com/casablancax/travel-ai-platform/internal/payments"
	"github.com/casablancax/travel-ai-platform/internal/retell"
	"github.com/casablancax/travel-ai-platform/internal/status"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting travel-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	metricsHandler, voiceMetrics := setupVoiceMetrics()

	caspioClient := buildCaspioClient(cfg, logger)
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	store, memoRepo, leadRepo, paymentRecorder := buildStores(cfg, caspioClient, pool, logger)

	resolver := kb.NewResolver(kb.DefaultTable())
	statusService := status.NewService(store, resolver, memoRepo, logger)
	statusHandler := status.NewHandler(statusService, store, resolver, logger).WithMetrics(voiceMetrics)

	retellClient := buildRetellClient(cfg, logger)
	var importer *memos.Importer
	var dialer leads.Dialer
	if retellClient != nil {
		importer = memos.NewImporter(retellClient, store, memoRepo.(memos.HistoryWriter), logger)
		dialer = retellClient
	}
	memosHandler := memos.NewHandler(memoRepo, importer, logger).WithMetrics(voiceMetrics)

	var notifier livecall.Notifier
	if cfg.ChatWebhookURL != "" {
		notifier = livecall.NewWebhookNotifier(cfg.ChatWebhookURL, nil, logger)
	} else {
		logger.Warn("chat webhook not configured, live call alerts disabled")
	}
	tracker := livecall.NewTracker(notifier, cfg.DashboardURL, logger)
	livecallHandler := livecall.NewHandler(tracker, logger).WithMetrics(voiceMetrics)

	leadsService := leads.NewService(leadRepo, dialer, cfg.RetellAgentID, cfg.RetellPhoneNumber, logger)
	var facebook *leads.FacebookClient
	if cfg.FacebookAccessToken != "" {
		facebook = leads.NewFacebookClient(cfg.FacebookAccessToken, nil)
	}
	leadsHandler := leads.NewHandler(leadsService, facebook, cfg.FacebookVerifyToken, logger)

	var paymentsHandler *payments.Handler
	if cfg.TwilioAccountSID != "" && cfg.PaymentPageURL != "" {
		sms := notify.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
		paymentsService := payments.NewService(sms, paymentRecorder, cfg.PaymentPageURL, logger)
		paymentsHandler = payments.NewHandler(paymentsService, logger).WithMetrics(voiceMetrics)
	} else {
		logger.Warn("payment link SMS not configured")
	}

	routerCfg := &router.Config{
		Logger:             logger,
		StatusHandler:      statusHandler,
		MemosHandler:       memosHandler,
		LivecallHandler:    livecallHandler,
		LeadsHandler:       leadsHandler,
		PaymentsHandler:    paymentsHandler,
		MetricsHandler:     metricsHandler,
		Health:             healthCheck(caspioClient),
		WebhookSecret:      cfg.RetellWebhookSecret,
		AdminAuthSecret:    cfg.AdminAuthSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildCaspioClient returns nil when credentials are absent so the server
// can still run against Postgres or mock data.
func buildCaspioClient(cfg *appconfig.Config, logger *logging.Logger) *caspio.Client {
	if cfg.CaspioClientID == "" || cfg.CaspioClientSecret == "" {
		return nil
	}
	client, err := caspio.New(caspio.Config{
		AccountID:    cfg.CaspioAccountID,
		BaseURL:      cfg.CaspioBaseURL,
		TokenURL:     cfg.CaspioTokenURL,
		ClientID:     cfg.CaspioClientID,
		ClientSecret: cfg.CaspioClientSecret,
		Timeout:      cfg.CaspioTimeout,
		Logger:       logger.Logger,
	})
	if err != nil {
		logger.Error("caspio client init failed", "error", err)
		os.Exit(1)
	}
	return client
}

func buildRetellClient(cfg *appconfig.Config, logger *logging.Logger) *retell.Client {
	if cfg.RetellAPIKey == "" {
		logger.Warn("voice-agent API key not configured, call import and callbacks disabled")
		return nil
	}
	client, err := retell.New(retell.Config{
		APIKey:  cfg.RetellAPIKey,
		BaseURL: cfg.RetellBaseURL,
		Logger:  logger.Logger,
	})
	if err != nil {
		logger.Error("voice-agent client init failed", "error", err)
		os.Exit(1)
	}
	return client
}

func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("postgres pool init failed", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Warn("postgres unreachable at startup", "error", err)
	}
	return pool
}

func buildStores(cfg *appconfig.Config, caspioClient *caspio.Client, pool *pgxpool.Pool, logger *logging.Logger) (customer.Store, memos.Repository, leads.Repository, payments.Recorder) {
	switch cfg.ResolveCustomerStore() {
	case "caspio":
		if caspioClient == nil {
			logger.Error("caspio store selected but credentials are missing")
			os.Exit(1)
		}
		logger.Info("using caspio-backed stores")
		return customer.NewCaspioStore(caspioClient, cfg.CaspioTableRIMS, logger),
			memos.NewCaspioRepository(caspioClient, cfg.CaspioTableMemos, logger),
			leads.NewCaspioRepository(caspioClient, cfg.CaspioTableLeads, logger),
			payments.NewCaspioRecorder(caspioClient, cfg.CaspioTableLeads)
	case "postgres":
		if pool == nil {
			logger.Error("postgres store selected but DATABASE_URL is missing")
			os.Exit(1)
		}
		logger.Info("using postgres-backed stores")
		return customer.NewPostgresStore(pool),
			memos.NewPostgresRepository(pool),
			leads.NewPostgresRepository(pool),
			payments.NewPostgresRecorder(pool)
	default:
		logger.Info("using mock data stores")
		return customer.NewMockStore(),
			memos.NewInMemoryRepository(),
			leads.NewInMemoryRepository(),
			payments.NewInMemoryRecorder()
	}
}

func setupVoiceMetrics() (http.Handler, *metrics.VoiceMetrics) {
	registry := prometheus.NewRegistry()
	m := metrics.NewVoiceMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m
}

func healthCheck(caspioClient *caspio.Client) func(r *http.Request) error {
	if caspioClient == nil {
		return nil
	}
	return func(r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		return caspioClient.Ping(ctx)
	}
}
