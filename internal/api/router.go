package api

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/certguru/internal/config"
)

// RegisterRoutes adds every API route to mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Questions
	mux.HandleFunc("GET /api/questions", h.listQuestions)
	mux.HandleFunc("GET /api/questions/random", h.randomQuestion)
	mux.HandleFunc("GET /api/questions/{id}", h.getQuestion)
	mux.HandleFunc("POST /api/questions/{id}/answer", h.submitAnswer)
	mux.HandleFunc("POST /api/questions/{id}/skip", h.skipQuestion)
	mux.HandleFunc("GET /api/questions/{id}/hint", h.getHint)
	mux.HandleFunc("GET /api/questions/{id}/explanation", h.getExplanation)
	mux.HandleFunc("POST /api/questions/{id}/star", h.setStar)
	mux.HandleFunc("POST /api/questions/{id}/note", h.setNote)
	mux.HandleFunc("GET /api/tags", h.listTags)
	mux.HandleFunc("GET /api/mastery-levels", h.masteryLevels)

	// Progress
	mux.HandleFunc("GET /api/progress", h.getProgress)
	mux.HandleFunc("GET /api/progress/session", h.sessionSummary)
	mux.HandleFunc("GET /api/progress/sessions", h.listSessions)
	mux.HandleFunc("POST /api/progress/session/start", h.startSession)
	mux.HandleFunc("POST /api/progress/reset", h.resetProgress)
	mux.HandleFunc("POST /api/progress/reset-selective", h.resetSelective)
	mux.HandleFunc("POST /api/progress/clear-explanations", h.clearExplanations)
	mux.HandleFunc("POST /api/progress/clear-hints", h.clearHints)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "API is running"})
	})
}

// NewRouter builds the full handler chain: logging, then CORS, then routes.
func NewRouter(h *Handler, cfg config.ServerConfig, log logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return Logging(log)(c.Handler(mux))
}

// NewServer returns an http.Server for cfg.
func NewServer(h *Handler, cfg config.ServerConfig, log logrus.FieldLogger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(h, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Explanations wait on the LLM provider.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
