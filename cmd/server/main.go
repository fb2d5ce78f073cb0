package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/handlers"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
	"vocabdrill/internal/study"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	wordRepo := repository.NewWordRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// Shared infrastructure
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenDuration)
	sched := study.NewScheduler(cfg.RolloverHour)
	limiter := security.NewRateLimiter(120, time.Minute)

	// Services
	authService := service.NewAuthService(userRepo, tokens)
	vocabService := service.NewVocabService(semesterRepo, wordRepo, progressRepo, statsRepo, sched)
	studyService := service.NewStudyService(progressRepo, statsRepo, semesterRepo, sched, cfg.DailyNewCap, cfg.SessionIdleTimeout)
	importService := service.NewImportService(semesterRepo, wordRepo)

	if cfg.AdminUsername != "" {
		if err := ensureAdmin(userRepo, cfg.AdminUsername); err != nil {
			log.Fatalf("Failed to configure admin account: %v", err)
		}
	}

	// Handlers
	mw := handlers.NewMiddleware(tokens, limiter)
	authHandler := handlers.NewAuthHandler(authService)
	vocabHandler := handlers.NewVocabHandler(vocabService)
	studyHandler := handlers.NewStudyHandler(studyService)
	adminHandler := handlers.NewAdminHandler(vocabService, authService, importService, func() error {
		return service.SeedSampleData(semesterRepo, wordRepo)
	})

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("GET /api/semesters", vocabHandler.Semesters)
	mux.HandleFunc("GET /api/vocab/{semesterID}", vocabHandler.Words)

	// Authenticated routes
	auth := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(h) }
	mux.Handle("GET /api/progress/{semesterID}", auth(vocabHandler.Progress))
	mux.Handle("GET /api/stats/{semesterID}", auth(vocabHandler.Stats))
	mux.Handle("GET /api/overview", auth(vocabHandler.Overview))
	mux.Handle("GET /api/vocab/hard/{semesterID}", auth(vocabHandler.HardWords))
	mux.Handle("POST /api/user/password", auth(authHandler.ChangePassword))

	mux.Handle("POST /api/study/start", auth(studyHandler.Start))
	mux.Handle("GET /api/study/{token}", auth(studyHandler.State))
	mux.Handle("POST /api/study/{token}/learned", auth(studyHandler.MarkLearned))
	mux.Handle("POST /api/study/{token}/quiz", auth(studyHandler.AnswerQuiz))
	mux.Handle("POST /api/study/{token}/spell", auth(studyHandler.SubmitSpelling))
	mux.Handle("POST /api/study/{token}/next", auth(studyHandler.Next))
	mux.Handle("POST /api/study/{token}/exit", auth(studyHandler.Exit))

	// Admin routes
	admin := func(h http.HandlerFunc) http.Handler { return mw.RequireAdmin(h) }
	mux.Handle("POST /api/admin/semesters", admin(adminHandler.CreateSemester))
	mux.Handle("PUT /api/admin/semesters/{id}", admin(adminHandler.UpdateSemester))
	mux.Handle("DELETE /api/admin/semesters/{id}", admin(adminHandler.DeleteSemester))
	mux.Handle("POST /api/admin/vocab", admin(adminHandler.CreateWord))
	mux.Handle("PUT /api/admin/vocab/{id}", admin(adminHandler.UpdateWord))
	mux.Handle("DELETE /api/admin/vocab/{id}", admin(adminHandler.DeleteWord))
	mux.Handle("POST /api/admin/vocab/import/{semesterID}", admin(adminHandler.ImportWords))
	mux.Handle("POST /api/admin/vocab/upload/{semesterID}", admin(adminHandler.UploadWords))
	mux.Handle("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("PUT /api/admin/users/{username}", admin(adminHandler.UpdateUser))
	mux.Handle("DELETE /api/admin/users/{username}", admin(adminHandler.DeleteUser))
	mux.Handle("POST /api/init-data", admin(adminHandler.InitData))

	handler := mw.Logging(mw.RateLimit(mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Flush abandoned drill sessions in the background
	cleanupDone := make(chan struct{})
	go studyService.StartCleanupLoop(10*time.Minute, cleanupDone)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	close(cleanupDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	// Persist any buffered progress before exit
	studyService.FlushAll()
	log.Println("Server stopped")
}

// ensureAdmin creates the configured admin account if needed and grants
// it the admin flag
func ensureAdmin(users *repository.UserRepository, username string) error {
	user, err := users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		user = &models.User{Username: username, IsAdmin: true}
		if err := users.Create(user); err != nil {
			return err
		}
		log.Printf("Created admin account: %s", username)
		return nil
	}
	if !user.IsAdmin {
		if err := users.SetAdmin(username, true); err != nil {
			return err
		}
		log.Printf("Promoted %s to admin", username)
	}
	return nil
}
