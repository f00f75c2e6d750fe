package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joeychilson/regexpoutline/rules"
)

// OutlineRequest represents a request to outline a document.
type OutlineRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// RulesResponse lists the rule sets the server resolves documents against.
type RulesResponse struct {
	RuleSets []rules.RuleSet `json:"rule_sets"`
	Presets  []string        `json:"presets"`
}

// ErrorResponse represents an error.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// handleOutline handles POST /v1/outline requests.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.GetMaxBodyBytes())

	var req OutlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge(err) {
			s.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.logger.Error("failed to decode request", "error", err)
		s.sendError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.outline(w, r, req)
}

// handleOutlineRaw handles POST /v1/outline/raw?name=... requests, where the
// body is the document content itself.
func (s *Server) handleOutlineRaw(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.GetMaxBodyBytes())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			s.sendError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.logger.Error("failed to read request body", "error", err)
		s.sendError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	s.outline(w, r, OutlineRequest{Name: r.URL.Query().Get("name"), Content: string(body)})
}

func (s *Server) outline(w http.ResponseWriter, r *http.Request, req OutlineRequest) {
	if strings.TrimSpace(req.Name) == "" {
		s.sendError(w, "name is required", http.StatusBadRequest)
		return
	}

	result, err := s.outliner.Outline(r.Context(), req.Name, req.Content)
	if err != nil {
		s.logger.Warn("outline aborted", "name", req.Name, "error", err)
		s.sendError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	s.logger.Debug("outline completed",
		"name", result.Name,
		"ext", result.Ext,
		"nodes", len(result.Nodes),
		"cached", result.Cached)

	s.sendJSON(w, result, http.StatusOK)
}

// handleRules handles GET /v1/rules requests.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, RulesResponse{
		RuleSets: s.outliner.RuleSets(),
		Presets:  rules.PresetNames(),
	}, http.StatusOK)
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	s.sendJSON(w, health, http.StatusOK)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	if err := writeJSON(w, data, statusCode); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, ErrorResponse{Error: message, StatusCode: statusCode}, statusCode)
}

func writeJSON(w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	_ = writeJSON(w, ErrorResponse{Error: message, StatusCode: statusCode}, statusCode)
}
