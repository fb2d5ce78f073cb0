package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// ProgressRepository handles user progress data access
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ListWordsWithProgress returns a semester's words joined with one user's
// progress, in teaching order. Words the user has never studied carry a
// nil Progress.
func (r *ProgressRepository) ListWordsWithProgress(username string, semesterID int64) ([]models.WordWithProgress, error) {
	rows, err := r.db.Query(`
		SELECT w.id, w.semester_id, w.word, w.phonetic, w.meaning,
		       w.example_en, w.example_cn, w.sort_order, w.created_at,
		       p.id, p.state, p.next_review, p.ease_factor, p.review_interval,
		       p.failure_count, p.updated_at
		FROM vocab_words w
		LEFT JOIN user_progress p ON p.word_id = w.id AND p.username = ?
		WHERE w.semester_id = ?
		ORDER BY w.sort_order, w.id;`, username, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words with progress: %w", err)
	}
	defer rows.Close()

	var result []models.WordWithProgress
	for rows.Next() {
		var wp models.WordWithProgress
		var progressID sql.NullInt64
		var state sql.NullString
		var nextReview, updatedAt sql.NullTime
		var ef, interval, failures sql.NullInt64

		if err := rows.Scan(
			&wp.ID, &wp.SemesterID, &wp.Word, &wp.Phonetic, &wp.Meaning,
			&wp.ExampleEn, &wp.ExampleCn, &wp.SortOrder, &wp.CreatedAt,
			&progressID, &state, &nextReview, &ef, &interval, &failures, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan word progress: %w", err)
		}

		if progressID.Valid {
			p := &models.UserProgress{
				ID:           progressID.Int64,
				Username:     username,
				WordID:       wp.ID,
				SemesterID:   wp.SemesterID,
				State:        state.String,
				EF:           int(ef.Int64),
				Interval:     int(interval.Int64),
				FailureCount: int(failures.Int64),
			}
			if nextReview.Valid {
				p.NextReview = &nextReview.Time
			}
			if updatedAt.Valid {
				p.UpdatedAt = updatedAt.Time
			}
			wp.Progress = p
		}
		result = append(result, wp)
	}
	return result, rows.Err()
}

// Get retrieves one user's progress on one word, returning nil if absent
func (r *ProgressRepository) Get(username string, wordID int64) (*models.UserProgress, error) {
	p := &models.UserProgress{Username: username, WordID: wordID}
	var nextReview sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, semester_id, state, next_review, ease_factor, review_interval,
		       failure_count, updated_at
		FROM user_progress WHERE username = ? AND word_id = ?;`,
		username, wordID).Scan(
		&p.ID, &p.SemesterID, &p.State, &nextReview, &p.EF, &p.Interval,
		&p.FailureCount, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if nextReview.Valid {
		p.NextReview = &nextReview.Time
	}
	return p, nil
}

// UpsertBatch writes a batch of progress updates in one transaction,
// inserting rows for first attempts and updating existing ones
func (r *ProgressRepository) UpsertBatch(username string, updates []models.ProgressUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, u := range updates {
		if err := upsertProgress(tx, username, u, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// upsertProgress uses check-then-write instead of ON CONFLICT so the
// same SQL runs on all three dialects
func upsertProgress(tx *database.Tx, username string, u models.ProgressUpdate, now time.Time) error {
	var existingID int64
	err := tx.QueryRow(`
		SELECT id FROM user_progress WHERE username = ? AND word_id = ?;`,
		username, u.WordID).Scan(&existingID)

	if err == sql.ErrNoRows {
		_, err = tx.Exec(`
			INSERT INTO user_progress
				(username, word_id, semester_id, state, next_review, ease_factor,
				 review_interval, failure_count, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			username, u.WordID, u.SemesterID, u.State, u.NextReview, u.EF,
			u.Interval, u.FailureCount, now)
		if err != nil {
			return fmt.Errorf("failed to insert progress for word %d: %w", u.WordID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check progress for word %d: %w", u.WordID, err)
	}

	// Penalty columns are reset to neutral on every write; the live
	// penalty loop exists only inside a study session.
	_, err = tx.Exec(`
		UPDATE user_progress
		SET state = ?, next_review = ?, ease_factor = ?, review_interval = ?,
		    failure_count = ?, penalty_progress = 0, in_penalty = `+
		tx.GetDialect().BoolValue(false)+`, updated_at = ?
		WHERE id = ?;`,
		u.State, u.NextReview, u.EF, u.Interval, u.FailureCount, now, existingID)
	if err != nil {
		return fmt.Errorf("failed to update progress for word %d: %w", u.WordID, err)
	}
	return nil
}

// ListHardWords returns a user's words whose lifetime failure count
// exceeds the hard threshold, hardest first
func (r *ProgressRepository) ListHardWords(username string, semesterID int64) ([]models.WordWithProgress, error) {
	rows, err := r.db.Query(`
		SELECT w.id, w.semester_id, w.word, w.phonetic, w.meaning,
		       w.example_en, w.example_cn, w.sort_order, w.created_at,
		       p.id, p.state, p.next_review, p.ease_factor, p.review_interval,
		       p.failure_count, p.updated_at
		FROM user_progress p
		JOIN vocab_words w ON w.id = p.word_id
		WHERE p.username = ? AND p.semester_id = ? AND p.failure_count > ?
		ORDER BY p.failure_count DESC, w.sort_order;`,
		username, semesterID, models.HardWordThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list hard words: %w", err)
	}
	defer rows.Close()

	var result []models.WordWithProgress
	for rows.Next() {
		var wp models.WordWithProgress
		p := &models.UserProgress{Username: username}
		var nextReview sql.NullTime

		if err := rows.Scan(
			&wp.ID, &wp.SemesterID, &wp.Word, &wp.Phonetic, &wp.Meaning,
			&wp.ExampleEn, &wp.ExampleCn, &wp.SortOrder, &wp.CreatedAt,
			&p.ID, &p.State, &nextReview, &p.EF, &p.Interval,
			&p.FailureCount, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan hard word: %w", err)
		}
		if nextReview.Valid {
			p.NextReview = &nextReview.Time
		}
		p.WordID = wp.ID
		p.SemesterID = wp.SemesterID
		wp.Progress = p
		result = append(result, wp)
	}
	return result, rows.Err()
}

// CountByState tallies a user's words per mastery state in one semester.
// Unstudied words are not represented and must be derived from the total.
func (r *ProgressRepository) CountByState(username string, semesterID int64) (map[string]int, error) {
	rows, err := r.db.Query(`
		SELECT state, COUNT(*) FROM user_progress
		WHERE username = ? AND semester_id = ?
		GROUP BY state;`, username, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to count progress states: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("failed to scan state count: %w", err)
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

// CountHardWords returns how many of a user's words are above the hard
// threshold in one semester
func (r *ProgressRepository) CountHardWords(username string, semesterID int64) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM user_progress
		WHERE username = ? AND semester_id = ? AND failure_count > ?;`,
		username, semesterID, models.HardWordThreshold).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count hard words: %w", err)
	}
	return n, nil
}
