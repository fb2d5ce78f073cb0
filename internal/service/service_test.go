package service

import (
	"path/filepath"
	"testing"
	"time"

	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/study"
)

type testEnv struct {
	db        *database.DB
	users     *repository.UserRepository
	semesters *repository.SemesterRepository
	words     *repository.WordRepository
	progress  *repository.ProgressRepository
	stats     *repository.StatsRepository
	sched     *study.Scheduler
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		semesters: repository.NewSemesterRepository(db),
		words:     repository.NewWordRepository(db),
		progress:  repository.NewProgressRepository(db),
		stats:     repository.NewStatsRepository(db),
		sched:     study.NewScheduler(4),
	}
}

func (e *testEnv) seedSemester(t *testing.T, wordCount int) *models.Semester {
	t.Helper()
	sem := &models.Semester{Name: "Term 1", Slug: "term-1", IsActive: true}
	if err := e.semesters.Create(sem); err != nil {
		t.Fatalf("failed to create semester: %v", err)
	}

	var batch []*models.VocabWord
	for i := 0; i < wordCount; i++ {
		batch = append(batch, &models.VocabWord{
			SemesterID: sem.ID,
			Word:       testWordText(i),
			Meaning:    "meaning-" + testWordText(i),
			SortOrder:  i,
		})
	}
	if err := e.words.CreateBatch(batch); err != nil {
		t.Fatalf("failed to create words: %v", err)
	}
	return sem
}

func testWordText(i int) string {
	return string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + "word"
}

func newTestTokens() *security.TokenManager {
	return security.NewTokenManager("test-secret", time.Hour)
}
