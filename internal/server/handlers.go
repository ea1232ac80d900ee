package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/omriShneor/alfred_booking/internal/agent"
	"github.com/omriShneor/alfred_booking/internal/agent/booking"
	"github.com/omriShneor/alfred_booking/internal/database"
)

// maxBodyBytes caps chat and tool request bodies.
const maxBodyBytes = 1 << 20

// serveStaticFile serves a static file from filesystem (dev mode) or embedded (production)
func (s *Server) serveStaticFile(w http.ResponseWriter, filename string) {
	var html []byte
	var err error

	if s.devMode {
		// In dev mode, read from filesystem for hot reloading
		path := filepath.Join("internal", "server", "static", filename)
		html, err = os.ReadFile(path)
	} else {
		html, err = staticFiles.ReadFile("static/" + filename)
	}

	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load %s", filename))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveStaticFile(w, "index.html")
}

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.db == nil || s.db.Ping() != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	status := map[string]interface{}{
		"status":   "healthy",
		"database": "connected",
		"calendar": "disconnected",
		"email":    "not_configured",
		"llm":      "not_configured",
	}

	if s.svc != nil && s.svc.CalendarConfigured() {
		status["calendar"] = "connected"
	}
	if s.svc != nil && s.svc.EmailConfigured() {
		status["email"] = "configured"
		if s.mailer != nil {
			status["email"] = s.mailer.Name()
		}
	}
	if s.assistant != nil && s.assistant.IsConfigured() {
		status["llm"] = s.assistant.ProviderName()
	}

	respondJSON(w, http.StatusOK, status)
}

// Assistant API

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var history []booking.ChatMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&history); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be a JSON array of {role, content} messages")
		return
	}
	if len(history) == 0 {
		respondError(w, http.StatusBadRequest, "at least one message is required")
		return
	}

	if s.assistant == nil || !s.assistant.IsConfigured() {
		respondError(w, http.StatusServiceUnavailable, "assistant is not configured. Set an LLM API key.")
		return
	}

	reply, err := s.assistant.Chat(r.Context(), history)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoUserMessage):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, agent.ErrInsufficientCredits):
			s.logger.Error("llm provider rejected request", "error", err)
			respondError(w, http.StatusServiceUnavailable, "assistant is temporarily unavailable")
		default:
			s.logger.Error("chat failed", "error", err)
			respondError(w, http.StatusBadGateway, "assistant request failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, reply)
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		respondJSON(w, http.StatusOK, []agent.Tool{})
		return
	}
	respondJSON(w, http.StatusOK, s.assistant.Registry().Tools())
}

// handleExecuteTool runs one tool without the model. The body is a flat JSON object of arguments.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		respondError(w, http.StatusServiceUnavailable, "assistant not initialized")
		return
	}

	name := r.PathValue("name")
	input := map[string]any{}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			respondError(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
	}

	output, err := s.assistant.ExecuteTool(r.Context(), name, input)
	if err != nil {
		if errors.Is(err, agent.ErrUnknownTool) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(output))
}

// Appointments API

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		respondError(w, http.StatusServiceUnavailable, "appointment service not initialized")
		return
	}
	respondJSON(w, http.StatusOK, s.svc.ListAppointments(r.Context(), r.URL.Query().Get("date")))
}

func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	appt, err := s.db.GetAppointment(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if appt == nil {
		respondError(w, http.StatusNotFound, "appointment not found")
		return
	}

	respondJSON(w, http.StatusOK, appt)
}

func (s *Server) handleAppointmentHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	entries, err := s.db.GetAppointmentHistory(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []database.HistoryEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// handleClientAppointments reads the calendar, the source of truth.
func (s *Server) handleClientAppointments(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		respondError(w, http.StatusServiceUnavailable, "appointment service not initialized")
		return
	}
	respondJSON(w, http.StatusOK, s.svc.GetUserAppointments(r.Context(), r.PathValue("email")))
}

// handleClientRecords reads the local side-channel records, including cancelled ones.
func (s *Server) handleClientRecords(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	appts, err := s.db.ListAppointmentsByEmail(strings.TrimSpace(r.PathValue("email")))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if appts == nil {
		appts = []database.Appointment{}
	}

	respondJSON(w, http.StatusOK, appts)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
