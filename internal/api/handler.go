// Package api serves the trainer over HTTP as JSON.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/trainer"
)

// Handler holds the dependencies of every HTTP handler.
type Handler struct {
	trainer *trainer.Trainer
	log     logrus.FieldLogger

	// shuffle is the default for the shuffle query parameter of
	// /api/questions/random.
	shuffle bool
}

// NewHandler creates a Handler over t.
func NewHandler(t *trainer.Trainer, shuffle bool, log logrus.FieldLogger) *Handler {
	return &Handler{trainer: t, log: log, shuffle: shuffle}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

// handleError maps trainer errors to HTTP responses. Returns true if an error
// was written.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, trainer.ErrQuestionNotFound):
		respondError(w, http.StatusNotFound, "Question not found")
	case errors.Is(err, trainer.ErrNoQuestions):
		respondError(w, http.StatusNotFound, "No questions found")
	case errors.Is(err, trainer.ErrAllMastered):
		respondError(w, http.StatusGone, "All questions with related tag(s) are mastered")
	case errors.Is(err, trainer.ErrSessionComplete):
		respondError(w, http.StatusGone, "Session complete: No more questions available")
	case errors.Is(err, trainer.ErrInvalidAnswer):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "question id must be an integer")
		return 0, false
	}
	return n, true
}

// queryList reads a repeated query parameter, also splitting comma separated
// values: ?tags=a&tags=b and ?tags=a,b are the same.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryBool(w http.ResponseWriter, r *http.Request, key string, required bool) (bool, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		if required {
			respondError(w, http.StatusBadRequest, "missing query parameter: "+key)
			return false, false
		}
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid boolean for "+key)
		return false, false
	}
	return v, true
}
