package api

import (
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/certguru/internal/question"
	"github.com/abhisek/certguru/internal/scoring"
	"github.com/abhisek/certguru/internal/selector"
	"github.com/abhisek/certguru/internal/trainer"
)

// ── Request / Response types ────────────────────────────────────────────────

type answerRequest struct {
	SelectedAnswers    []string `json:"selected_answers"`
	RequestExplanation bool     `json:"request_explanation"`
	// AnswerMapping is the original_mapping of a shuffled question. When set,
	// SelectedAnswers are display letters.
	AnswerMapping map[string]string `json:"answer_mapping,omitempty"`
}

type answerResponse struct {
	Question       *question.Question `json:"question"`
	IsCorrect      bool               `json:"is_correct"`
	CorrectAnswers []string           `json:"correct_answers"`
	Explanation    *string            `json:"explanation"`
	PreviousScore  int                `json:"previous_score"`
	MasteryLevel   scoring.Band       `json:"mastery_level"`
}

// shuffledQuestion replaces the answers of the embedded question with the
// displayed ones.
type shuffledQuestion struct {
	*question.Question
	Answers         question.Answers  `json:"answers"`
	OriginalMapping map[string]string `json:"original_mapping"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /api/questions?tags=&search=&starred_only=&include_inactive=&filter=
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	starred, ok := queryBool(w, r, "starred_only", false)
	if !ok {
		return
	}
	inactive, ok := queryBool(w, r, "include_inactive", false)
	if !ok {
		return
	}
	opts := trainer.ListOptions{
		Tags:            queryList(r, "tags"),
		Search:          r.URL.Query().Get("search"),
		StarredOnly:     starred,
		IncludeInactive: inactive,
	}
	if src := strings.TrimSpace(r.URL.Query().Get("filter")); src != "" {
		expr, err := question.CompileExpr(src)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.Expr = expr
	}

	qs, err := h.trainer.List(r.Context(), opts)
	if h.handleError(w, r, err) {
		return
	}
	if qs == nil {
		qs = []*question.Question{}
	}
	respondJSON(w, http.StatusOK, qs)
}

// GET /api/questions/random?tags=&mastery_levels=&starred_only=&shuffle=
func (h *Handler) randomQuestion(w http.ResponseWriter, r *http.Request) {
	starred, ok := queryBool(w, r, "starred_only", false)
	if !ok {
		return
	}
	shuffle := h.shuffle
	if r.URL.Query().Has("shuffle") {
		if shuffle, ok = queryBool(w, r, "shuffle", false); !ok {
			return
		}
	}

	var levels []scoring.Band
	for _, raw := range queryList(r, "mastery_levels") {
		b, err := scoring.ParseBand(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		levels = append(levels, b)
	}

	q, err := h.trainer.NextQuestion(r.Context(), selector.Filter{
		Tags:        queryList(r, "tags"),
		Levels:      levels,
		StarredOnly: starred,
	})
	if h.handleError(w, r, err) {
		return
	}

	if !shuffle {
		respondJSON(w, http.StatusOK, q)
		return
	}
	s := h.trainer.Shuffle(q)
	respondJSON(w, http.StatusOK, shuffledQuestion{
		Question:        s.Question,
		Answers:         s.Answers,
		OriginalMapping: s.Mapping,
	})
}

// GET /api/questions/{id}
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	q, err := h.trainer.Question(r.Context(), n)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// POST /api/questions/{id}/answer
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	selected := req.SelectedAnswers
	if len(req.AnswerMapping) > 0 {
		var err error
		selected, err = question.Shuffled{Mapping: req.AnswerMapping}.ToOriginal(selected)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := h.trainer.SubmitAnswer(r.Context(), n, selected, req.RequestExplanation)
	if h.handleError(w, r, err) {
		return
	}

	resp := answerResponse{
		Question:       res.Question,
		IsCorrect:      res.Correct,
		CorrectAnswers: res.CorrectKeys,
		PreviousScore:  res.PrevScore,
		MasteryLevel:   res.Band,
	}
	if req.RequestExplanation {
		resp.Explanation = lo.ToPtr(res.Explanation)
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/questions/{id}/skip
func (h *Handler) skipQuestion(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	if h.handleError(w, r, h.trainer.Skip(r.Context(), n)) {
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Question skipped"})
}

// GET /api/questions/{id}/hint
func (h *Handler) getHint(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	hint, err := h.trainer.Hint(r.Context(), n)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"hint": hint})
}

// GET /api/questions/{id}/explanation?regenerate=
func (h *Handler) getExplanation(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	regenerate, ok := queryBool(w, r, "regenerate", false)
	if !ok {
		return
	}
	text, err := h.trainer.Explanation(r.Context(), n, regenerate)
	if h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"explanation": text})
}

// POST /api/questions/{id}/star?starred=
func (h *Handler) setStar(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	starred, ok := queryBool(w, r, "starred", true)
	if !ok {
		return
	}
	if _, err := h.trainer.Star(r.Context(), n, starred); h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "starred": starred})
}

// POST /api/questions/{id}/note?note=
func (h *Handler) setNote(w http.ResponseWriter, r *http.Request) {
	n, ok := pathNumber(w, r)
	if !ok {
		return
	}
	if !r.URL.Query().Has("note") {
		respondError(w, http.StatusBadRequest, "missing query parameter: note")
		return
	}
	note := r.URL.Query().Get("note")
	if _, err := h.trainer.SetNote(r.Context(), n, note); h.handleError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "note": note})
}

// GET /api/tags
func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.trainer.Tags(r.Context())
	if h.handleError(w, r, err) {
		return
	}
	if tags == nil {
		tags = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// GET /api/mastery-levels?tags=
func (h *Handler) masteryLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.trainer.MasteryLevels(r.Context(), queryList(r, "tags"))
	if h.handleError(w, r, err) {
		return
	}
	if levels == nil {
		levels = []scoring.Band{}
	}
	respondJSON(w, http.StatusOK, map[string][]scoring.Band{"mastery_levels": levels})
}
