package study

import (
	"testing"
	"time"

	"vocabdrill/internal/models"
)

func TestComputeNext(t *testing.T) {
	tests := []struct {
		name         string
		success      bool
		ef           int
		interval     int
		isNew        bool
		wantEF       int
		wantInterval int
	}{
		{"first success on new word", true, 25, 0, true, 25, 3},
		{"success with zero interval", true, 20, 0, false, 21, 3},
		{"success multiplies interval", true, 20, 10, false, 21, 20},
		{"success rounds up", true, 21, 5, false, 22, 11},
		{"ef capped at max", true, 25, 3, false, 25, 8},
		{"failure resets interval", false, 20, 30, false, 18, 1},
		{"failure floors ef", false, 14, 5, false, 13, 1},
		{"failure at floor stays", false, 13, 1, false, 13, 1},
		{"zero ef treated as default", true, 0, 0, true, 25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotEF, gotInterval := ComputeNext(tt.success, tt.ef, tt.interval, tt.isNew)
			if gotEF != tt.wantEF || gotInterval != tt.wantInterval {
				t.Errorf("ComputeNext(%v, %d, %d, %v) = (%d, %d), want (%d, %d)",
					tt.success, tt.ef, tt.interval, tt.isNew, gotEF, gotInterval, tt.wantEF, tt.wantInterval)
			}
		})
	}
}

func TestComputeNextIntervalNeverShrinksOnSuccess(t *testing.T) {
	// At the minimum ease factor 13 the multiplier is 1.3, so a
	// successful review always pushes the interval out
	for interval := 1; interval <= 100; interval++ {
		_, next := ComputeNext(true, models.MinEaseFactor, interval, false)
		if next <= interval {
			t.Fatalf("interval %d did not grow: got %d", interval, next)
		}
	}
}

func TestStudyDayRollover(t *testing.T) {
	sched := NewScheduler(4)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"midday", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), "2026-03-10"},
		{"just before rollover", time.Date(2026, 3, 10, 3, 59, 0, 0, time.UTC), "2026-03-09"},
		{"at rollover", time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC), "2026-03-10"},
		{"late night", time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), "2026-03-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.FormatStatDate(sched.StudyDay(tt.at))
			if got != tt.want {
				t.Errorf("StudyDay(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sched := NewScheduler(4)
	sched.Now = func() time.Time { return now }

	yesterday := now.AddDate(0, 0, -1)
	laterToday := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	earlyTomorrow := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name       string
		nextReview *time.Time
		want       bool
	}{
		{"never reviewed", nil, true},
		{"overdue", &yesterday, true},
		{"due later today", &laterToday, true},
		{"before tomorrow's rollover", &earlyTomorrow, true},
		{"due tomorrow", &tomorrow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sched.IsDue(tt.nextReview); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyOutcome(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sched := NewScheduler(4)
	sched.Now = func() time.Time { return now }

	w := &SessionWord{
		Word:  models.VocabWord{ID: 7, SemesterID: 1},
		IsNew: true,
		EF:    models.MaxEaseFactor,
	}

	update := sched.ApplyOutcome(&Outcome{Word: w, Success: true})

	if update.State != models.StateReview {
		t.Errorf("state = %q, want %q", update.State, models.StateReview)
	}
	if update.Interval != 3 {
		t.Errorf("interval = %d, want 3", update.Interval)
	}
	if update.NextReview == nil || !update.NextReview.Equal(now.Add(3*24*time.Hour)) {
		t.Errorf("next review = %v, want %v", update.NextReview, now.Add(3*24*time.Hour))
	}

	failed := &SessionWord{
		Word:         models.VocabWord{ID: 8, SemesterID: 1},
		EF:           20,
		Interval:     12,
		FailureCount: 2,
	}
	update = sched.ApplyOutcome(&Outcome{Word: failed, Success: false})
	if update.State != models.StateLearning {
		t.Errorf("state = %q, want %q", update.State, models.StateLearning)
	}
	if update.EF != 18 || update.Interval != 1 {
		t.Errorf("got ef=%d interval=%d, want ef=18 interval=1", update.EF, update.Interval)
	}
	if update.FailureCount != 2 {
		t.Errorf("failure count = %d, want 2", update.FailureCount)
	}
}
