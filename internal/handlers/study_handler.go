package handlers

import (
	"net/http"

	"vocabdrill/internal/service"
)

// StudyHandler serves the drill-session endpoints
type StudyHandler struct {
	study *service.StudyService
}

// NewStudyHandler creates a study handler
func NewStudyHandler(study *service.StudyService) *StudyHandler {
	return &StudyHandler{study: study}
}

// Start handles POST /api/study/start
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SemesterID int64 `json:"semesterId"`
		Extra      bool  `json:"extra"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	state, err := h.study.Start(username, req.SemesterID, req.Extra)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

// State handles GET /api/study/{token}: the current card
func (h *StudyHandler) State(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	state, err := h.study.State(r.PathValue("token"), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// MarkLearned handles POST /api/study/{token}/learned
func (h *StudyHandler) MarkLearned(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	state, err := h.study.MarkLearned(r.PathValue("token"), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// AnswerQuiz handles POST /api/study/{token}/quiz
func (h *StudyHandler) AnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	result, err := h.study.AnswerQuiz(r.PathValue("token"), username, req.Answer)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SubmitSpelling handles POST /api/study/{token}/spell
func (h *StudyHandler) SubmitSpelling(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	result, err := h.study.SubmitSpelling(r.PathValue("token"), username, req.Answer)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Next handles POST /api/study/{token}/next
func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	state, err := h.study.Next(r.PathValue("token"), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Exit handles POST /api/study/{token}/exit
func (h *StudyHandler) Exit(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	state, err := h.study.Exit(r.PathValue("token"), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
