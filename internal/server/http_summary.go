package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// handleSummary handles GET and POST /summary. The caller authorizes with
// either the static summary token (query parameter, JSON body field, or
// X-Summary-Token header) or the scheduled-job secret as a bearer token.
func (s *RelayServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.cfg.SummaryToken == "" && s.cfg.CronSecret == "" {
		writeError(w, http.StatusBadRequest, "summary token or cron secret required")
		return
	}

	if !s.summaryAuthorized(r) {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if !s.cfg.StoreConfigured() || s.store == nil {
		writeError(w, http.StatusBadRequest, "ledger store required for summary")
		return
	}

	if err := s.SendSummary(r.Context()); err != nil {
		slog.Error("summary failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "summary sent"})
}

// summaryAuthorized checks the request against both credential schemes.
func (s *RelayServer) summaryAuthorized(r *http.Request) bool {
	if s.cfg.CronSecret != "" {
		if r.Header.Get("Authorization") == "Bearer "+s.cfg.CronSecret {
			return true
		}
	}
	if s.cfg.SummaryToken == "" {
		return false
	}
	return summaryToken(r) == s.cfg.SummaryToken
}

// summaryToken pulls the caller's token from the query string, the
// X-Summary-Token header, or a JSON body field, in that order.
func summaryToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if t := r.Header.Get("X-Summary-Token"); t != "" {
		return t
	}
	if r.Method == http.MethodPost && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			return body.Token
		}
	}
	return ""
}
