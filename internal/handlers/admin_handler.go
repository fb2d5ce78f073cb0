package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/service"
)

// maxUploadSize bounds vocabulary file uploads
const maxUploadSize = 10 << 20 // 10 MB

// AdminHandler serves the management endpoints
type AdminHandler struct {
	vocab    *service.VocabService
	auth     *service.AuthService
	importer *service.ImportService
	seed     func() error
}

// NewAdminHandler creates an admin handler. seed populates sample data
// for a fresh install.
func NewAdminHandler(vocab *service.VocabService, auth *service.AuthService, importer *service.ImportService, seed func() error) *AdminHandler {
	return &AdminHandler{vocab: vocab, auth: auth, importer: importer, seed: seed}
}

// CreateSemester handles POST /api/admin/semesters
func (h *AdminHandler) CreateSemester(w http.ResponseWriter, r *http.Request) {
	var sem models.Semester
	if err := decodeJSON(r, &sem); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.vocab.CreateSemester(&sem); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sem)
}

// UpdateSemester handles PUT /api/admin/semesters/{id}
func (h *AdminHandler) UpdateSemester(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sem models.Semester
	if err := decodeJSON(r, &sem); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sem.ID = id

	if err := h.vocab.UpdateSemester(&sem); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sem)
}

// DeleteSemester handles DELETE /api/admin/semesters/{id}
func (h *AdminHandler) DeleteSemester(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.vocab.DeleteSemester(id); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateWord handles POST /api/admin/vocab: one word
func (h *AdminHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	var word models.VocabWord
	if err := decodeJSON(r, &word); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.vocab.CreateWord(&word); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

// UpdateWord handles PUT /api/admin/vocab/{id}
func (h *AdminHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var word models.VocabWord
	if err := decodeJSON(r, &word); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	word.ID = id

	if err := h.vocab.UpdateWord(&word); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/admin/vocab/{id}
func (h *AdminHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.vocab.DeleteWord(id); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ImportWords handles POST /api/admin/vocab/import/{semesterID}: a JSON
// array of word objects, with field aliases tolerated
func (h *AdminHandler) ImportWords(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	defer r.Body.Close()

	result, err := h.importer.ImportJSON(semesterID, body)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UploadWords handles POST /api/admin/vocab/upload/{semesterID}: a
// multipart form with an .xlsx or .csv file
func (h *AdminHandler) UploadWords(w http.ResponseWriter, r *http.Request) {
	semesterID, err := pathID(r, "semesterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	var result *service.ImportResult
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		result, err = h.importer.ImportXLSX(semesterID, file)
	case ".csv":
		result, err = h.importer.ImportCSV(semesterID, file)
	default:
		writeError(w, http.StatusBadRequest, "unsupported file type, use .xlsx or .csv")
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers()
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser handles PUT /api/admin/users/{username}: the admin flag
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.SetAdmin(r.PathValue("username"), req.IsAdmin); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteUser handles DELETE /api/admin/users/{username}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == usernameFromContext(r.Context()) {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.auth.DeleteUser(username); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// InitData handles POST /api/init-data: seeds sample vocabulary for a
// fresh install
func (h *AdminHandler) InitData(w http.ResponseWriter, r *http.Request) {
	if err := h.seed(); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sample data loaded"})
}
