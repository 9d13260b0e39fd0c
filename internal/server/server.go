// Package server exposes the receiving workflow over HTTP. The terminals
// are thin: every keystroke or scan is one POST /v1/scan, and the response
// tells the terminal what to render next. Supervisory reads (batch status,
// receiver roster, session inspection) sit alongside.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/presence"
	"github.com/groblegark/dockhand/internal/session"
	"github.com/groblegark/dockhand/internal/store"
	"github.com/groblegark/dockhand/internal/workflow"
)

// ReceivingServer handles terminal and supervisor HTTP traffic.
type ReceivingServer struct {
	dispatcher *workflow.Dispatcher
	sessions   session.Store
	repo       store.Store
	Presence   *presence.Tracker
	logger     *slog.Logger
}

// New returns a ReceivingServer.
func New(d *workflow.Dispatcher, sessions session.Store, repo store.Store, logger *slog.Logger) *ReceivingServer {
	return &ReceivingServer{
		dispatcher: d,
		sessions:   sessions,
		repo:       repo,
		Presence:   presence.New(),
		logger:     logger,
	}
}

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ReceivingServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/scan", s.handleScan)
	mux.HandleFunc("GET /v1/sessions/{operator}", s.handleGetSession)
	mux.HandleFunc("DELETE /v1/sessions/{operator}", s.handleDeleteSession)
	mux.HandleFunc("GET /v1/batches/{number}", s.handleGetBatch)
	mux.HandleFunc("GET /v1/batches/{number}/pallets", s.handleListPallets)
	mux.HandleFunc("GET /v1/batches/{number}/receivers", s.handleReceivers)
	mux.HandleFunc("GET /v1/operators", s.handleRoster)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, LoggingMiddleware(s.logger, RecoveryMiddleware(s.logger, mux)))
}

// handleScan handles POST /v1/scan: one terminal request through the
// dispatcher.
func (s *ReceivingServer) handleScan(w http.ResponseWriter, r *http.Request) {
	var req model.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Operator == "" {
		writeError(w, http.StatusBadRequest, "operator is required")
		return
	}
	if req.Command != "" && !req.Command.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown command "+string(req.Command))
		return
	}

	resp, err := s.dispatcher.Handle(r.Context(), &req)
	if err != nil {
		s.logger.Error("scan dispatch failed", "operator", req.Operator, "err", err)
		writeError(w, http.StatusInternalServerError, "dispatch failed")
		return
	}

	s.recordPresence(r.Context(), &req, resp)
	writeJSON(w, http.StatusOK, resp)
}

// recordPresence reports the dispatched scan to the roster tracker.
func (s *ReceivingServer) recordPresence(ctx context.Context, req *model.ScanRequest, resp *model.ScanResponse) {
	batch := ""
	if sess, err := s.sessions.Get(ctx, req.Operator); err == nil {
		batch = sess.Batch.Number
	}
	s.Presence.RecordScan(presence.ScanEvent{
		Operator:    req.Operator,
		Terminal:    req.Terminal,
		BatchNumber: batch,
		Op:          resp.Op,
	})
}

// handleGetSession handles GET /v1/sessions/{operator}.
func (s *ReceivingServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	operator := r.PathValue("operator")
	sess, err := s.sessions.Get(r.Context(), operator)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no session for "+operator)
		return
	}
	if err != nil {
		s.logger.Error("get session failed", "operator", operator, "err", err)
		writeError(w, http.StatusInternalServerError, "get session failed")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleDeleteSession handles DELETE /v1/sessions/{operator}: a supervisor
// forcibly clears a stuck terminal.
func (s *ReceivingServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	operator := r.PathValue("operator")
	if err := s.sessions.Delete(r.Context(), operator); err != nil {
		s.logger.Error("delete session failed", "operator", operator, "err", err)
		writeError(w, http.StatusInternalServerError, "delete session failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "operator": operator})
}

// handleGetBatch handles GET /v1/batches/{number}.
func (s *ReceivingServer) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	batch, err := s.repo.GetBatch(r.Context(), number)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "batch "+number+" not found")
		return
	}
	if err != nil {
		s.logger.Error("get batch failed", "batch", number, "err", err)
		writeError(w, http.StatusInternalServerError, "get batch failed")
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

// handleListPallets handles GET /v1/batches/{number}/pallets.
func (s *ReceivingServer) handleListPallets(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	pallets, err := s.repo.ListPallets(r.Context(), number)
	if err != nil {
		s.logger.Error("list pallets failed", "batch", number, "err", err)
		writeError(w, http.StatusInternalServerError, "list pallets failed")
		return
	}
	if pallets == nil {
		pallets = []*model.Pallet{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pallets": pallets, "count": len(pallets)})
}

// handleReceivers handles GET /v1/batches/{number}/receivers: the on-shift
// operators currently scanning this batch.
func (s *ReceivingServer) handleReceivers(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	receivers := s.Presence.Receivers(number)
	if receivers == nil {
		receivers = []presence.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"receivers": receivers, "count": len(receivers)})
}

// handleRoster handles GET /v1/operators.
func (s *ReceivingServer) handleRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"operators": s.Presence.Roster(0)})
}

// handleHealth handles GET /v1/health.
func (s *ReceivingServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
