package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/abhisek/certguru/internal/progress"
	"github.com/abhisek/certguru/internal/session"
	"github.com/abhisek/certguru/internal/trainer"
)

type startSessionRequest struct {
	// ActiveMinutes replaces the wall-clock duration of the ending session,
	// e.g. when the client paused a timer.
	ActiveMinutes *float64 `json:"active_minutes"`
}

type startSessionResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	PreviousSession session.Summary `json:"previous_session"`
}

// GET /api/progress
func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	up, err := h.trainer.Progress(r.Context())
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, up)
}

// GET /api/progress/session
func (h *Handler) sessionSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.trainer.CurrentSession())
}

// GET /api/progress/sessions
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.trainer.Sessions(r.Context())
	if h.handleError(w, r, err) {
		return
	}
	if sessions == nil {
		sessions = []progress.IndividualSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// POST /api/progress/session/start
// The body is optional.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ActiveMinutes != nil && *req.ActiveMinutes < 0 {
		respondError(w, http.StatusBadRequest, "active_minutes must not be negative")
		return
	}

	ended, err := h.trainer.StartNewSession(r.Context(), req.ActiveMinutes)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, startSessionResponse{
		Success:         true,
		Message:         "New session started",
		PreviousSession: ended,
	})
}

// POST /api/progress/reset
func (h *Handler) resetProgress(w http.ResponseWriter, r *http.Request) {
	if h.handleError(w, r, h.trainer.Reset(r.Context())) {
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "All progress has been reset"})
}

// POST /api/progress/reset-selective
func (h *Handler) resetSelective(w http.ResponseWriter, r *http.Request) {
	var opts trainer.ResetOptions
	if !decodeJSON(w, r, &opts) {
		return
	}
	done, err := h.trainer.ResetSelective(r.Context(), opts)
	if h.handleError(w, r, err) {
		return
	}
	if !done {
		respondJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Nothing selected to reset"})
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Selected progress has been reset"})
}

// POST /api/progress/clear-explanations
func (h *Handler) clearExplanations(w http.ResponseWriter, r *http.Request) {
	if _, err := h.trainer.ClearExplanations(r.Context()); h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "All explanations have been cleared"})
}

// POST /api/progress/clear-hints
func (h *Handler) clearHints(w http.ResponseWriter, r *http.Request) {
	if _, err := h.trainer.ClearHints(r.Context()); h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "All hints have been cleared"})
}

func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
