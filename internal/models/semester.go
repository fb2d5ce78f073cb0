package models

import "time"

// Semester represents an administrator-defined grouping of vocabulary words
// (a "study set"). Semesters are created and managed by admins only.
type Semester struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// SemesterSummary extends Semester with its word count for listing screens.
type SemesterSummary struct {
	Semester
	WordCount int `json:"word_count"`
}
