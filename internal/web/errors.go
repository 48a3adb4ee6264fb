package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for the API and as an HTML page otherwise
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError and core.HTTPStatus
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/logging"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
	"github.com/JonMunkholm/xbrlmap/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Action     string   `json:"action,omitempty"`
	Code       string   `json:"code"`
	Candidates []string `json:"candidates,omitempty"` // for ambiguous lookups
}

// respondError logs err and answers with its mapped status and message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := core.HTTPStatus(err)

	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, err, userMsg, status)
	} else {
		respondErrorHTML(w, r, userMsg, status)
	}
}

// respondErrorJSON writes a JSON error response. Client errors carry the
// technical message, which names the offending key; server errors do not.
func respondErrorJSON(w http.ResponseWriter, err error, msg core.UserMessage, status int) {
	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	if status < http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	var amb *taxonomy.AmbiguousError
	if errors.As(err, &amb) {
		for _, c := range amb.Candidates {
			resp.Candidates = append(resp.Candidates, c.String())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// respondErrorHTML writes an HTML error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Layout(http.StatusText(status), templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
