package models

import "time"

// VocabWord is an immutable dictionary entry belonging to a semester.
// Words are created by administrative import and never mutated during study.
type VocabWord struct {
	ID         int64     `json:"id"`
	SemesterID int64     `json:"semester_id"`
	Word       string    `json:"word"`
	Phonetic   string    `json:"phonetic,omitempty"`
	Meaning    string    `json:"meaning"`
	ExampleEn  string    `json:"example_en,omitempty"`
	ExampleCn  string    `json:"example_cn,omitempty"`
	SortOrder  int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

// WordWithProgress pairs a word with the requesting user's progress row,
// if one exists. Progress is nil for words never attempted.
type WordWithProgress struct {
	VocabWord
	Progress *UserProgress `json:"progress,omitempty"`
}

// IsNew reports whether the word counts as unlearned for session building:
// either no progress row exists yet or the row is still in the new state.
func (w WordWithProgress) IsNew() bool {
	return w.Progress == nil || w.Progress.State == StateNew
}
