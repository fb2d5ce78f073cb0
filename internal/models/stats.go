package models

import "time"

// Kinds of study-stat increments.
const (
	StatNew    = "new"
	StatReview = "review"
)

// StudyStats holds per (user, semester, calendar-day) completion counters.
// Display only; never feeds back into scheduling.
type StudyStats struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	SemesterID  int64  `json:"semester_id"`
	Date        string `json:"date"` // YYYY-MM-DD
	NewCount    int    `json:"new_count"`
	ReviewCount int    `json:"review_count"`
}

// SemesterOverview summarizes a user's standing in one semester for the
// dashboard: totals, unlearned words, due reviews and hard words
// (failure_count above the hard threshold).
type SemesterOverview struct {
	SemesterID   int64  `json:"semester_id"`
	SemesterName string `json:"semester_name"`
	Total        int    `json:"total"`
	NewCount     int    `json:"new_count"`
	ReviewCount  int    `json:"review_count"`
	HardCount    int    `json:"hard_count"`
}

// HardWordThreshold is the lifetime failure count above which a word is
// surfaced in the hard-words list.
const HardWordThreshold = 3

// FormatStatDate renders a time as the YYYY-MM-DD key used by study_stats.
func FormatStatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
