package handlers

import (
	"net/http"

	"vocabdrill/internal/service"
)

// VocabHandler serves semester and word read endpoints
type VocabHandler struct {
	vocab *service.VocabService
}

// NewVocabHandler creates a vocab handler
func NewVocabHandler(vocab *service.VocabService) *VocabHandler {
	return &VocabHandler{vocab: vocab}
}

// Semesters handles GET /api/semesters
func (h *VocabHandler) Semesters(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.vocab.ListSemesters()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semesters)
}

// Words handles GET /api/vocab/{semesterID}: the public word list
func (h *VocabHandler) Words(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	words, err := h.vocab.Words(semesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// Progress handles GET /api/progress/{semesterID}: the authenticated
// user's words joined with their progress
func (h *VocabHandler) Progress(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	words, err := h.vocab.WordsWithProgress(username, semesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// Overview handles GET /api/overview: per-semester dashboard counters
func (h *VocabHandler) Overview(w http.ResponseWriter, r *http.Request) {
	username := usernameFromContext(r.Context())
	overview, err := h.vocab.Overview(username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HardWords handles GET /api/vocab/hard/{semesterID}
func (h *VocabHandler) HardWords(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	words, err := h.vocab.HardWords(username, semesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, words)
}

// Stats handles GET /api/stats/{semesterID}: recent daily counters
func (h *VocabHandler) Stats(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := usernameFromContext(r.Context())
	stats, err := h.vocab.Stats(username, semesterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
