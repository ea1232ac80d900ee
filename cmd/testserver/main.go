// Package main provides a local server for trying the booking assistant end to end.
// It runs with in-memory SQLite, an in-memory calendar and a recording mailer, and uses
// the real LLM provider when an API key is set.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... go run ./cmd/testserver
//
// The server exposes additional test control endpoints:
//   - POST /api/test/reset - Remove all calendar events and sent emails
//   - GET /api/test/emails - List emails the assistant has sent
//   - GET /api/test/events - List calendar events
package main

import (
	"context"
	"encoding/json"
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
	"github.com/omriShneor/alfred_booking/internal/config"
	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/normalize"
	"github.com/omriShneor/alfred_booking/internal/server"
	"github.com/omriShneor/alfred_booking/internal/testutil"
	"github.com/omriShneor/alfred_booking/internal/timeutil"
)

type sentEmail struct {
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Attachments []string `json:"attachments"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger.Info("starting booking test server", "storage", "in-memory")

	cfg := config.LoadFromEnv()

	db, err := database.New(":memory:")
	if err != nil {
		logger.Error("failed to create database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	loc, _ := timeutil.ResolveLocation(cfg.Timezone)
	norm := normalize.New(loc, normalize.ParseDateOrder(cfg.DateOrder))

	calendar := testutil.NewFakeCalendar()
	mailer := testutil.NewRecordingMailer()
	seedCalendar(calendar, norm.Now())

	svc := appointment.NewService(appointment.Options{
		Calendar:   calendar,
		Mailer:     mailer,
		Store:      db,
		Normalizer: norm,
		Organizer:  "bookings@example.com",
		Timeout:    cfg.RequestTimeout,
		Logger:     logger,
	})

	var provider agent.Provider
	if cfg.LLMAPIKey() != "" {
		if cfg.LLMProvider == config.ProviderAnthropic {
			provider = agent.NewAPIClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.LLMTemperature)
		} else {
			provider = agent.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTemperature)
		}
		logger.Info("LLM configured", "provider", provider.Name(), "model", cfg.LLMModel())
	} else {
		logger.Warn("LLM API key not set. /api/chat will return 503, /api/tools still works.")
	}

	assistant, err := booking.NewAgent(booking.Config{
		Provider:   provider,
		Operations: svc,
		Normalizer: norm,
		MaxTurns:   cfg.AgentMaxTurns,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("failed to create assistant", "error", err)
		os.Exit(1)
	}

	srv := server.New(server.ServerConfig{
		DB:        db,
		Service:   svc,
		Assistant: assistant,
		Mailer:    mailer,
		Port:      cfg.HTTPPort,
		DevMode:   cfg.DevMode,
		Logger:    logger,
	})

	// Create test control mux
	testMux := http.NewServeMux()
	mainHandler := srv.Handler()

	testMux.HandleFunc("POST /api/test/reset", func(w http.ResponseWriter, r *http.Request) {
		calendar.ClearEvents()
		mailer.Reset()
		logger.Info("test data reset")
		respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	})

	testMux.HandleFunc("GET /api/test/emails", func(w http.ResponseWriter, r *http.Request) {
		emails := []sentEmail{}
		for _, e := range mailer.Sent() {
			se := sentEmail{To: e.To, Subject: e.Subject, Attachments: []string{}}
			for _, a := range e.Attachments {
				se.Attachments = append(se.Attachments, a.Filename)
			}
			emails = append(emails, se)
		}
		respondJSON(w, http.StatusOK, emails)
	})

	testMux.HandleFunc("GET /api/test/events", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, calendar.GetEvents())
	})

	// Fallback to main handler
	testMux.Handle("/", mainHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      testMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("test server running", "addr", fmt.Sprintf("http://localhost:%d", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down test server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// seedCalendar books two appointments tomorrow so availability and lookups have data.
func seedCalendar(calendar *testutil.FakeCalendar, now time.Time) {
	tomorrow := now.AddDate(0, 0, 1)
	day := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())

	testutil.NewAppointmentBuilder(day.Add(10*time.Hour)).
		WithClient("Demo Client", "demo@example.com").
		WithPurpose("Initial consultation").
		MustAdd(calendar)
	testutil.NewAppointmentBuilder(day.Add(14*time.Hour+30*time.Minute)).
		WithClient("Legacy Client", "legacy@example.com").
		WithPurpose("Follow-up").
		Legacy().
		MustAdd(calendar)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
