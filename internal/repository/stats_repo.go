package repository

import (
	"database/sql"
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// StatsRepository handles daily study stats data access
type StatsRepository struct {
	db database.DBTX
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db database.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// Increment adds completed-word counts to a user's row for one study day,
// creating the row on first use. Check-then-write keeps the SQL portable
// across dialects.
func (r *StatsRepository) Increment(username string, semesterID int64, date string, newDelta, reviewDelta int) error {
	if newDelta == 0 && reviewDelta == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID int64
	err = tx.QueryRow(`
		SELECT id FROM study_stats
		WHERE username = ? AND semester_id = ? AND stat_date = ?;`,
		username, semesterID, date).Scan(&existingID)

	if err == sql.ErrNoRows {
		_, err = tx.Exec(`
			INSERT INTO study_stats (username, semester_id, stat_date, new_count, review_count)
			VALUES (?, ?, ?, ?, ?);`,
			username, semesterID, date, newDelta, reviewDelta)
		if err != nil {
			return fmt.Errorf("failed to insert study stats: %w", err)
		}
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to check study stats: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE study_stats
		SET new_count = new_count + ?, review_count = review_count + ?
		WHERE id = ?;`,
		newDelta, reviewDelta, existingID)
	if err != nil {
		return fmt.Errorf("failed to update study stats: %w", err)
	}
	return tx.Commit()
}

// ListByUser returns a user's daily stats for one semester, newest first,
// limited to the most recent days
func (r *StatsRepository) ListByUser(username string, semesterID int64, limit int) ([]*models.StudyStats, error) {
	rows, err := r.db.Query(`
		SELECT id, username, semester_id, stat_date, new_count, review_count
		FROM study_stats
		WHERE username = ? AND semester_id = ?
		ORDER BY stat_date DESC
		LIMIT ?;`, username, semesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list study stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.StudyStats
	for rows.Next() {
		s := &models.StudyStats{}
		if err := rows.Scan(&s.ID, &s.Username, &s.SemesterID, &s.Date,
			&s.NewCount, &s.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan study stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
