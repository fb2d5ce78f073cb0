package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/study"
)

// newTestServer wires the real stack over a temp SQLite database
func newTestServer(t *testing.T) (*httptest.Server, *security.TokenManager) {
	t.Helper()
	cfg := &config.Config{
		DatabaseType:   "sqlite",
		DatabasePath:   filepath.Join(t.TempDir(), "test.db"),
		MigrationsPath: "../../migrations",
	}
	db, err := database.Initialize(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewUserRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	wordRepo := repository.NewWordRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	tokens := security.NewTokenManager("test-secret", time.Hour)
	sched := study.NewScheduler(4)

	authService := service.NewAuthService(userRepo, tokens)
	vocabService := service.NewVocabService(semesterRepo, wordRepo, progressRepo, statsRepo, sched)
	studyService := service.NewStudyService(progressRepo, statsRepo, semesterRepo, sched, 20, time.Hour)
	importService := service.NewImportService(semesterRepo, wordRepo)

	mw := NewMiddleware(tokens, security.NewRateLimiter(10000, time.Minute))
	authHandler := NewAuthHandler(authService)
	vocabHandler := NewVocabHandler(vocabService)
	studyHandler := NewStudyHandler(studyService)
	adminHandler := NewAdminHandler(vocabService, authService, importService, func() error {
		return service.SeedSampleData(semesterRepo, wordRepo)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("GET /api/semesters", vocabHandler.Semesters)
	mux.Handle("GET /api/progress/{semesterID}", mw.RequireAuth(http.HandlerFunc(vocabHandler.Progress)))
	mux.Handle("POST /api/study/start", mw.RequireAuth(http.HandlerFunc(studyHandler.Start)))
	mux.Handle("GET /api/study/{token}", mw.RequireAuth(http.HandlerFunc(studyHandler.State)))
	mux.Handle("POST /api/admin/semesters", mw.RequireAdmin(http.HandlerFunc(adminHandler.CreateSemester)))
	mux.Handle("POST /api/init-data", mw.RequireAdmin(http.HandlerFunc(adminHandler.InitData)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tokens
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	return resp
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/login", "", map[string]string{"username": "alice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 for first login", resp.StatusCode)
	}

	var result struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if result.Token == "" || result.Username != "alice" {
		t.Errorf("unexpected login result: %+v", result)
	}

	resp2 := doJSON(t, "POST", server.URL+"/api/login", "", map[string]string{"username": "alice"})
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 for repeat login", resp2.StatusCode)
	}

	resp3 := doJSON(t, "POST", server.URL+"/api/login", "", map[string]string{"username": "x"})
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid username", resp3.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	server, tokens := newTestServer(t)

	resp := doJSON(t, "GET", server.URL+"/api/progress/1", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", resp.StatusCode)
	}

	resp2 := doJSON(t, "GET", server.URL+"/api/progress/1", "not-a-token", nil)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bad token", resp2.StatusCode)
	}

	token, err := tokens.Issue("alice", false)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	resp3 := doJSON(t, "GET", server.URL+"/api/progress/1", token, nil)
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown semester with valid token", resp3.StatusCode)
	}
}

func TestAdminRequired(t *testing.T) {
	server, tokens := newTestServer(t)

	userToken, _ := tokens.Issue("alice", false)
	adminToken, _ := tokens.Issue("root", true)

	body := map[string]interface{}{"name": "Term 1", "slug": "term-1"}

	resp := doJSON(t, "POST", server.URL+"/api/admin/semesters", userToken, body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-admin", resp.StatusCode)
	}

	resp2 := doJSON(t, "POST", server.URL+"/api/admin/semesters", adminToken, body)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201 for admin", resp2.StatusCode)
	}
}

func TestStudyFlowOverHTTP(t *testing.T) {
	server, tokens := newTestServer(t)
	adminToken, _ := tokens.Issue("root", true)
	userToken, _ := tokens.Issue("alice", false)

	// Seed sample data, list semesters, start a session
	resp := doJSON(t, "POST", server.URL+"/api/init-data", adminToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seed status = %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", server.URL+"/api/semesters", "", nil)
	defer resp.Body.Close()
	var semesters []models.SemesterSummary
	if err := json.NewDecoder(resp.Body).Decode(&semesters); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(semesters) != 1 {
		t.Fatalf("got %d semesters, want 1", len(semesters))
	}

	resp = doJSON(t, "POST", server.URL+"/api/study/start", userToken,
		map[string]interface{}{"semesterId": semesters[0].ID})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d, want 201", resp.StatusCode)
	}

	var state struct {
		Token string `json:"token"`
		Done  bool   `json:"done"`
		Card  *struct {
			Mode string `json:"mode"`
			Word string `json:"word"`
		} `json:"card"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Token == "" || state.Card == nil {
		t.Fatalf("unexpected session state: %+v", state)
	}
	if state.Card.Mode != "learn" {
		t.Errorf("first card mode = %q, want learn for fresh words", state.Card.Mode)
	}

	// The session is retrievable with its token
	resp = doJSON(t, "GET", server.URL+"/api/study/"+state.Token, userToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("state status = %d, want 200", resp.StatusCode)
	}
}
