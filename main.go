package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/appointment"
	"github.com/omriShneor/alfred_booking/internal/auth"
	"github.com/omriShneor/alfred_booking/internal/config"
	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/gmail"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/notify"
	"github.com/omriShneor/alfred_booking/internal/server"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

func main() {
	cfg := config.LoadFromEnv()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal(logger, "creating database", err)
	}
	defer db.Close()

	loc, fallback := timeutil.ResolveLocation(cfg.Timezone)
	if fallback {
		logger.Warn("time zone data unavailable, using fixed UTC+05:30", "timezone", cfg.Timezone)
	}
	norm := normalize.New(loc, normalize.ParseDateOrder(cfg.DateOrder))

	ctx := context.Background()
	gcalClient := initCalendar(ctx, cfg, logger)
	mailer := initMailer(cfg, gcalClient, logger)

	svcOpts := appointment.Options{
		Mailer:     mailer,
		Store:      db,
		Normalizer: norm,
		Organizer:  cfg.EmailFrom,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	}
	if gcalClient != nil {
		svcOpts.Calendar = gcalClient
	}
	svc := appointment.NewService(svcOpts)

	assistant, err := booking.NewAgent(booking.Config{
		Provider:   initProvider(cfg, logger),
		Operations: svc,
		Normalizer: norm,
		MaxTurns:   cfg.AgentMaxTurns,
		Logger:     logger,
	})
	if err != nil {
		fatal(logger, "creating assistant", err)
	}

	srvCfg := server.ServerConfig{
		DB:        db,
		Service:   svc,
		Assistant: assistant,
		Mailer:    mailer,
		Port:      cfg.HTTPPort,
		DevMode:   cfg.DevMode,
		Logger:    logger,

		AdminToken: cfg.AdminToken,
	}
	if gcalClient != nil {
		srvCfg.GCal = gcalClient
	}
	srv := server.New(srvCfg)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	waitForShutdown(logger, srv)
}

// initCalendar returns nil when no usable Google credentials are present.
func initCalendar(ctx context.Context, cfg *config.Config, logger *slog.Logger) *gcal.Client {
	opts := gcal.Options{
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
		TokenFile:       cfg.GoogleTokenFile,
		CalendarID:      cfg.CalendarID,
		BaseURL:         cfg.BaseURL,
		Timezone:        cfg.Timezone,
		Timeout:         cfg.RequestTimeout,
		Logger:          logger,
	}
	if cfg.EncryptionKey != "" {
		enc, err := auth.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			fatal(logger, "creating token encryptor", err)
		}
		opts.Encryptor = enc
	} else {
		logger.Warn("ALFRED_ENCRYPTION_KEY not set, OAuth token is stored unencrypted")
	}
	if cfg.EmailProvider == config.EmailGmail {
		opts.ExtraScopes = append(opts.ExtraScopes, gmail.SendScope)
	}

	client, err := gcal.NewClient(ctx, opts)
	if err != nil {
		logger.Warn("Google Calendar not configured", "error", err)
		return nil
	}

	if client.IsAuthenticated() {
		logger.Info("Google Calendar connected", "mode", client.Mode(), "calendar_id", client.CalendarID())
	} else {
		logger.Info("Google Calendar awaiting authorization", "connect", "POST /api/gcal/connect")
	}
	return client
}

// initMailer picks the email backend. The Gmail backend sends as the account connected
// through the calendar OAuth flow and becomes usable once that token exists.
func initMailer(cfg *config.Config, gcalClient *gcal.Client, logger *slog.Logger) notify.Mailer {
	if cfg.EmailProvider == config.EmailGmail {
		if gcalClient == nil {
			logger.Warn("EMAIL_PROVIDER=gmail needs Google OAuth credentials, email disabled")
			return notify.NewResendMailer("", cfg.EmailFrom, logger)
		}
		mailer := gmail.NewMailer(gcalClient, cfg.EmailFrom, logger)
		logger.Info("email via gmail", "from", cfg.EmailFrom, "ready", mailer.IsConfigured())
		return mailer
	}

	mailer := notify.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, logger)
	if mailer.IsConfigured() {
		logger.Info("email configured", "mailer", mailer.Name(), "from", cfg.EmailFrom)
	} else {
		logger.Warn("email not configured (RESEND_API_KEY and FROM_EMAIL required)")
	}
	return mailer
}

func initProvider(cfg *config.Config, logger *slog.Logger) agent.Provider {
	if cfg.LLMAPIKey() == "" {
		logger.Warn("LLM API key not set, chat disabled", "provider", cfg.LLMProvider)
		return nil
	}

	var provider agent.Provider
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		provider = agent.NewAPIClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.LLMTemperature)
	default:
		provider = agent.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTemperature)
	}

	logger.Info("assistant configured", "provider", provider.Name(), "model", cfg.LLMModel())
	return provider
}

func fatal(logger *slog.Logger, context string, err error) {
	logger.Error(fmt.Sprintf("error %s", context), "error", err)
	os.Exit(1)
}

func waitForShutdown(logger *slog.Logger, srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
