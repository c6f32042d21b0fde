package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

const readyCheckTimeout = 2 * time.Second

// reconfigurePayload distinguishes an absent replicas field from an explicit
// zero; only the former gets the default.
type reconfigurePayload struct {
	reconfig.PatchRequest
	Replicas *int32 `json:"replicas"`
}

type rollbackPayload struct {
	Backup string `json:"backup"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleReadyz reports readiness by re-evaluating the upstream context check.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	if err := s.checker.CheckContext(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleReconfigure(w http.ResponseWriter, r *http.Request) {
	var payload reconfigurePayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})

		return
	}

	req := payload.PatchRequest
	req.Replicas = 1

	if payload.Replicas != nil {
		req.Replicas = *payload.Replicas
	}

	report, err := s.engine.Run(r.Context(), req)
	if err != nil {
		// Only the entry precondition fails a run.
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})

		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var payload rollbackPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})

		return
	}

	if payload.Backup == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "backup id is required"})

		return
	}

	err := s.engine.Rollback(r.Context(), payload.Backup)

	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, reconfig.ErrBackupNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, reconfig.ErrPrecondition):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
