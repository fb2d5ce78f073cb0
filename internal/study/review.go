package study

import (
	"time"

	"vocabdrill/internal/models"
)

// Scheduler computes review intervals and study-day dueness.
// Ease factors are stored in tenths (25 means 2.5) so all arithmetic
// stays in integers.
type Scheduler struct {
	// RolloverHour is the local hour at which a new study day begins.
	// A review scheduled for 01:00 still belongs to the previous day
	// when RolloverHour is 4.
	RolloverHour int

	// Now is overridable for tests; defaults to time.Now
	Now func() time.Time
}

// NewScheduler creates a Scheduler with the given rollover hour
func NewScheduler(rolloverHour int) *Scheduler {
	return &Scheduler{RolloverHour: rolloverHour, Now: time.Now}
}

// ComputeNext applies one review outcome to an ease factor and interval.
// A first success jumps straight to a 3-day interval; later successes
// multiply by the ease factor; any failure resets the interval to 1 day.
func ComputeNext(success bool, ef, interval int, isNew bool) (newEF, newInterval int) {
	if ef == 0 {
		ef = models.MaxEaseFactor
	}

	if success {
		newEF = ef + 1
		if newEF > models.MaxEaseFactor {
			newEF = models.MaxEaseFactor
		}
		if isNew || interval == 0 {
			newInterval = 3
		} else {
			// ceil(interval * ef / 10) without floating point
			newInterval = (interval*ef + 9) / 10
		}
		return newEF, newInterval
	}

	newEF = ef - 2
	if newEF < models.MinEaseFactor {
		newEF = models.MinEaseFactor
	}
	return newEF, 1
}

// NextReviewAt returns the next review time for a given interval in days
func (s *Scheduler) NextReviewAt(interval int) time.Time {
	return s.now().Add(time.Duration(interval) * 24 * time.Hour)
}

// StudyDay truncates a timestamp to its study day, shifting by the
// rollover hour so late-night reviews count toward the previous day
func (s *Scheduler) StudyDay(t time.Time) time.Time {
	shifted := t.Add(-time.Duration(s.RolloverHour) * time.Hour)
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), 0, 0, 0, 0, shifted.Location())
}

// IsDue reports whether a word with the given next review time is due.
// Words with no scheduled review are always due.
func (s *Scheduler) IsDue(nextReview *time.Time) bool {
	if nextReview == nil {
		return true
	}
	return !s.StudyDay(*nextReview).After(s.StudyDay(s.now()))
}

// Today returns the current study day formatted for stats rows
func (s *Scheduler) Today() string {
	return models.FormatStatDate(s.StudyDay(s.now()))
}

// ApplyOutcome folds a drill outcome into a persistable progress update,
// advancing the word's scheduling state
func (s *Scheduler) ApplyOutcome(o *Outcome) models.ProgressUpdate {
	w := o.Word
	newEF, newInterval := ComputeNext(o.Success, w.EF, w.Interval, w.IsNew)
	w.EF = newEF
	w.Interval = newInterval

	state := models.StateLearning
	if o.Success {
		state = models.StateReview
	}
	next := s.NextReviewAt(newInterval)

	return models.ProgressUpdate{
		WordID:       w.Word.ID,
		SemesterID:   w.Word.SemesterID,
		State:        state,
		NextReview:   &next,
		EF:           newEF,
		Interval:     newInterval,
		FailureCount: w.FailureCount,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
