package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/omriShneor/alfred_booking/internal/gcal"
)

const (
	oauthStateTTL        = 10 * time.Minute
	oauthExchangeTimeout = 30 * time.Second
)

// Google Calendar API

func (s *Server) handleGCalStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"connected": false,
		"message":   "Not configured",
	}

	if s.gcal == nil {
		status["message"] = "Google Calendar client not initialized. Check credentials."
		respondJSON(w, http.StatusOK, status)
		return
	}

	status["mode"] = s.gcal.Mode()
	status["calendar_id"] = s.gcal.CalendarID()

	if s.gcal.IsAuthenticated() {
		status["connected"] = true
		status["message"] = "Connected"
	} else {
		status["message"] = "Not authenticated. Click Connect to authorize."
	}

	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleGCalListCalendars(w http.ResponseWriter, r *http.Request) {
	if s.gcal == nil || !s.gcal.IsAuthenticated() {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not connected")
		return
	}

	calendars, err := s.gcal.ListCalendars(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, calendars)
}

// handleGCalConnect starts the OAuth user-token flow. Service accounts need no connection.
func (s *Server) handleGCalConnect(w http.ResponseWriter, r *http.Request) {
	if s.gcal == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured. Check credentials.")
		return
	}
	if s.gcal.Mode() == gcal.AuthModeServiceAccount {
		respondError(w, http.StatusBadRequest, "Google Calendar uses a service account and is already connected")
		return
	}

	state := s.newOAuthState()
	authURL, err := s.gcal.GetAuthURL(state)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.gcal == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured")
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		s.logger.Warn("oauth authorization denied", "error", errParam)
		http.Redirect(w, r, "/?gcal=error", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}
	if !s.consumeOAuthState(r.URL.Query().Get("state")) {
		respondError(w, http.StatusBadRequest, "invalid or expired oauth state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), oauthExchangeTimeout)
	defer cancel()

	if err := s.gcal.ExchangeCode(ctx, code); err != nil {
		s.logger.Error("failed to exchange oauth code", "error", err)
		http.Redirect(w, r, "/?gcal=error", http.StatusFound)
		return
	}

	s.logger.Info("google calendar connected", "calendar_id", s.gcal.CalendarID())
	http.Redirect(w, r, "/?gcal=connected", http.StatusFound)
}

func (s *Server) newOAuthState() string {
	state := uuid.NewString()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for st, issued := range s.oauthStates {
		if now.Sub(issued) > oauthStateTTL {
			delete(s.oauthStates, st)
		}
	}
	s.oauthStates[state] = now
	return state
}

// consumeOAuthState accepts each issued state once, within its TTL.
func (s *Server) consumeOAuthState(state string) bool {
	if state == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	issued, ok := s.oauthStates[state]
	if !ok {
		return false
	}
	delete(s.oauthStates, state)
	return time.Since(issued) <= oauthStateTTL
}
