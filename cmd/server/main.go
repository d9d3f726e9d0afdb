package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carefront/frontdesk-ai/internal/api/router"
	"github.com/carefront/frontdesk-ai/internal/appointments"
	appconfig "github.com/carefront/frontdesk-ai/internal/config"
	"github.com/carefront/frontdesk-ai/internal/conversation"
	"github.com/carefront/frontdesk-ai/internal/export"
	"github.com/carefront/frontdesk-ai/internal/http/handlers"
	"github.com/carefront/frontdesk-ai/internal/notify"
	"github.com/carefront/frontdesk-ai/internal/observability/metrics"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting frontdesk-ai server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	m := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)

	// Durable persistence is optional: without DATABASE_URL the commit
	// workflow records appointments to the spreadsheet only.
	var saver conversation.AppointmentSaver
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.PingContext(pingCtx); err != nil {
			cancel()
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		cancel()

		migCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := appointments.Migrate(migCtx, db); err != nil {
			cancel()
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		cancel()
		saver = appointments.NewRepository(db, logger)
	} else {
		logger.Warn("DATABASE_URL not set, database persistence disabled")
	}

	completer := buildCompleter(cfg, logger)

	extractor := conversation.NewSlotExtractor(completer, cfg.ExtractionModel, m, logger)

	commit := conversation.NewCommitWorkflow(
		extractor,
		buildEmailSender(cfg, logger),
		saver,
		export.NewExcelExporter(cfg.ExportPath, logger),
		m,
		logger,
	)

	engine := conversation.NewEngine(
		conversation.NewSessionStore(),
		extractor,
		completer,
		commit,
		conversation.EngineConfig{
			ChatModel:          cfg.ChatModel,
			Temperature:        float32(cfg.Temperature),
			StrictConfirmation: cfg.StrictConfirmation,
		},
		m,
		logger,
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        handlers.NewChatHandler(engine, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:          cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodically drop sessions nobody has touched in a while.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := engine.Store().Sweep(cfg.SessionMaxAge); n > 0 {
					logger.Info("swept idle sessions", "count", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()

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
	close(sweepDone)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildCompleter wires the dual-provider completion stack: Groq for Llama
// models, Gemini for gemini models, both behind rate-limit retries.
func buildCompleter(cfg *appconfig.Config, logger *logging.Logger) conversation.LLMClient {
	var groq, gemini conversation.LLMClient
	if cfg.GroqAPIKey != "" {
		groq = conversation.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
	} else {
		logger.Warn("GROQ_API_KEY not set, groq provider disabled")
	}
	if cfg.GeminiAPIKey != "" {
		client, err := conversation.NewGeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
		} else {
			gemini = client
		}
	}

	policy := conversation.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.RetryMaxAttempts
	policy.BaseDelay = cfg.RetryBaseDelay
	policy.MaxDelay = cfg.RetryMaxDelay

	return conversation.NewRetryingClient(conversation.NewProviderRouter(groq, gemini), policy, logger)
}

// buildEmailSender selects the confirmation email transport. Missing
// credentials degrade to the log-only stub so commits still complete.
func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			return s
		}
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		if s := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.GmailAddress,
			Password: cfg.GmailAppPassword,
			From:     cfg.GmailAddress,
		}, logger); s != nil {
			return s
		}
	}
	logger.Warn("email provider not configured, using stub sender", "provider", cfg.EmailProvider)
	return notify.NewStubEmailSender(logger)
}
