package service

import (
	"errors"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/study"
	"vocabdrill/internal/validation"
)

// Sentinel errors for missing records
var (
	ErrSemesterNotFound = errors.New("semester not found")
	ErrWordNotFound     = errors.New("word not found")
)

// statsHistoryDays bounds how many daily rows the stats endpoint returns
const statsHistoryDays = 90

// VocabService handles semesters, word lists, and per-user progress views
type VocabService struct {
	semesters *repository.SemesterRepository
	words     *repository.WordRepository
	progress  *repository.ProgressRepository
	stats     *repository.StatsRepository
	sched     *study.Scheduler
}

// NewVocabService creates a new vocab service
func NewVocabService(
	semesters *repository.SemesterRepository,
	words *repository.WordRepository,
	progress *repository.ProgressRepository,
	stats *repository.StatsRepository,
	sched *study.Scheduler,
) *VocabService {
	return &VocabService{
		semesters: semesters,
		words:     words,
		progress:  progress,
		stats:     stats,
		sched:     sched,
	}
}

// ListSemesters returns the active semesters with word counts
func (s *VocabService) ListSemesters() ([]*models.SemesterSummary, error) {
	return s.semesters.ListActive()
}

// Words returns a semester's word list in teaching order
func (s *VocabService) Words(semesterID int64) ([]*models.VocabWord, error) {
	sem, err := s.semesters.GetByID(semesterID)
	if err != nil {
		return nil, err
	}
	if sem == nil {
		return nil, ErrSemesterNotFound
	}
	return s.words.ListBySemester(semesterID)
}

// WordsWithProgress returns a semester's words joined with the user's
// progress rows
func (s *VocabService) WordsWithProgress(username string, semesterID int64) ([]models.WordWithProgress, error) {
	sem, err := s.semesters.GetByID(semesterID)
	if err != nil {
		return nil, err
	}
	if sem == nil {
		return nil, ErrSemesterNotFound
	}
	return s.progress.ListWordsWithProgress(username, semesterID)
}

// Overview builds the dashboard summary across all active semesters:
// total words, unlearned words, words in review, and hard words
func (s *VocabService) Overview(username string) ([]*models.SemesterOverview, error) {
	semesters, err := s.semesters.ListActive()
	if err != nil {
		return nil, err
	}

	overviews := make([]*models.SemesterOverview, 0, len(semesters))
	for _, sem := range semesters {
		counts, err := s.progress.CountByState(username, sem.ID)
		if err != nil {
			return nil, err
		}
		hard, err := s.progress.CountHardWords(username, sem.ID)
		if err != nil {
			return nil, err
		}

		studied := counts[models.StateLearning] + counts[models.StateReview]
		overviews = append(overviews, &models.SemesterOverview{
			SemesterID:   sem.ID,
			SemesterName: sem.Name,
			Total:        sem.WordCount,
			NewCount:     sem.WordCount - studied,
			ReviewCount:  counts[models.StateReview],
			HardCount:    hard,
		})
	}
	return overviews, nil
}

// HardWords returns the user's frequently-missed words for a semester
func (s *VocabService) HardWords(username string, semesterID int64) ([]models.WordWithProgress, error) {
	return s.progress.ListHardWords(username, semesterID)
}

// Stats returns the user's recent daily study counters for a semester
func (s *VocabService) Stats(username string, semesterID int64) ([]*models.StudyStats, error) {
	return s.stats.ListByUser(username, semesterID, statsHistoryDays)
}

// CreateSemester validates and stores a new semester
func (s *VocabService) CreateSemester(sem *models.Semester) error {
	if err := validation.ValidateSemesterName(sem.Name); err != nil {
		return err
	}
	if sem.Slug == "" {
		sem.Slug = slugify(sem.Name)
	}
	if err := validation.ValidateSlug(sem.Slug); err != nil {
		return err
	}

	existing, err := s.semesters.GetBySlug(sem.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return validation.Errorf("a semester with slug %q already exists", sem.Slug)
	}

	sem.IsActive = true
	return s.semesters.Create(sem)
}

// UpdateSemester validates and saves semester changes
func (s *VocabService) UpdateSemester(sem *models.Semester) error {
	existing, err := s.semesters.GetByID(sem.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSemesterNotFound
	}
	if err := validation.ValidateSemesterName(sem.Name); err != nil {
		return err
	}
	if sem.Slug == "" {
		sem.Slug = existing.Slug
	}
	if err := validation.ValidateSlug(sem.Slug); err != nil {
		return err
	}
	return s.semesters.Update(sem)
}

// DeleteSemester removes a semester and its words
func (s *VocabService) DeleteSemester(id int64) error {
	existing, err := s.semesters.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSemesterNotFound
	}
	return s.semesters.Delete(id)
}

// CreateWord validates and stores one word
func (s *VocabService) CreateWord(w *models.VocabWord) error {
	if err := validation.ValidateWord(w.Word, w.Meaning); err != nil {
		return err
	}
	sem, err := s.semesters.GetByID(w.SemesterID)
	if err != nil {
		return err
	}
	if sem == nil {
		return ErrSemesterNotFound
	}
	return s.words.Create(w)
}

// UpdateWord validates and saves word changes
func (s *VocabService) UpdateWord(w *models.VocabWord) error {
	if err := validation.ValidateWord(w.Word, w.Meaning); err != nil {
		return err
	}
	existing, err := s.words.GetByID(w.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrWordNotFound
	}
	return s.words.Update(w)
}

// DeleteWord removes one word
func (s *VocabService) DeleteWord(id int64) error {
	return s.words.Delete(id)
}

// slugify lowercases a name and collapses runs of non-alphanumerics to
// single hyphens
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
