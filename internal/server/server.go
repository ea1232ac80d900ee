package server

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/appointment"
	"github.com/omriShneor/alfred_booking/internal/auth"
	"github.com/omriShneor/alfred_booking/internal/database"
	"github.com/omriShneor/alfred_booking/internal/gcal"
	"github.com/omriShneor/alfred_booking/internal/notify"
)

//go:embed static
var staticFiles embed.FS

// CalendarConnector is the part of the calendar client the HTTP surface needs
// for status reporting and the OAuth connection flow.
type CalendarConnector interface {
	IsAuthenticated() bool
	Mode() gcal.AuthMode
	CalendarID() string
	GetAuthURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) error
	ListCalendars(ctx context.Context) ([]gcal.CalendarInfo, error)
}

type Server struct {
	db        *database.DB
	svc       *appointment.Service
	assistant *booking.Agent
	gcal      CalendarConnector
	mailer    notify.Mailer
	logger    *slog.Logger
	httpSrv   *http.Server
	port      int
	devMode   bool
	operator  func(http.Handler) http.Handler

	mu          sync.Mutex
	oauthStates map[string]time.Time
}

// ServerConfig holds everything the server needs. GCal and Mailer may be nil.
type ServerConfig struct {
	DB        *database.DB
	Service   *appointment.Service
	Assistant *booking.Agent
	GCal      CalendarConnector
	Mailer    notify.Mailer
	Port      int
	DevMode   bool
	Logger    *slog.Logger

	// AdminToken guards the tool and appointment endpoints. Empty leaves them open.
	AdminToken string
}

func New(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		db:          cfg.DB,
		svc:         cfg.Service,
		assistant:   cfg.Assistant,
		gcal:        cfg.GCal,
		mailer:      cfg.Mailer,
		logger:      logger.With("component", "server"),
		port:        cfg.Port,
		devMode:     cfg.DevMode,
		operator:    auth.RequireToken(cfg.AdminToken),
		oauthStates: make(map[string]time.Time),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// WriteTimeout leaves room for several model round trips in one chat request.
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Chat page
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// Assistant API
	mux.HandleFunc("POST /api/chat", s.handleChat)
	s.handleOperator(mux, "GET /api/tools", s.handleListTools)
	s.handleOperator(mux, "POST /api/tools/{name}", s.handleExecuteTool)

	// Appointments API
	s.handleOperator(mux, "GET /api/appointments", s.handleListAppointments)
	s.handleOperator(mux, "GET /api/appointments/{id}", s.handleGetAppointment)
	s.handleOperator(mux, "GET /api/appointments/{id}/history", s.handleAppointmentHistory)
	s.handleOperator(mux, "GET /api/clients/{email}/appointments", s.handleClientAppointments)
	s.handleOperator(mux, "GET /api/clients/{email}/records", s.handleClientRecords)

	// Google Calendar API
	mux.HandleFunc("GET /api/gcal/status", s.handleGCalStatus)
	mux.HandleFunc("GET /api/gcal/calendars", s.handleGCalListCalendars)
	mux.HandleFunc("POST /api/gcal/connect", s.handleGCalConnect)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
}

// handleOperator registers an endpoint that requires the admin token.
func (s *Server) handleOperator(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.operator(h))
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", fmt.Sprintf("http://localhost:%d", s.port))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers so the chat page can be hosted elsewhere
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
