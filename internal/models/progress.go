package models

import "time"

// Mastery states for a (user, word) pair.
const (
	StateNew      = "new"
	StateLearning = "learning"
	StateReview   = "review"
)

// Ease factor bounds, stored in tenths (25 means 2.5).
const (
	MinEaseFactor = 13
	MaxEaseFactor = 25
)

// UserProgress is one row per (user, word). Created on the first study
// attempt, updated on every subsequent attempt. FailureCount is a monotonic
// lifetime counter; the penalty loop exists only in session memory and is
// never persisted.
type UserProgress struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	WordID       int64      `json:"word_id"`
	SemesterID   int64      `json:"semester_id"`
	State        string     `json:"state"`
	NextReview   *time.Time `json:"next_review,omitempty"`
	EF           int        `json:"ef"`
	Interval     int        `json:"interval"`
	FailureCount int        `json:"failure_count"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProgressUpdate is the write payload the progress sink flushes to storage.
// Upserted by (username, word_id); the last write for a word within one
// flush wins.
type ProgressUpdate struct {
	WordID       int64      `json:"wordId"`
	SemesterID   int64      `json:"semesterId"`
	State        string     `json:"state"`
	NextReview   *time.Time `json:"nextReview,omitempty"`
	EF           int        `json:"ef"`
	Interval     int        `json:"interval"`
	FailureCount int        `json:"failureCount"`
}
