package study

import (
	"errors"
	"math/rand"

	"vocabdrill/internal/models"
)

// ErrNothingDue is returned when a session has no words to drill
var ErrNothingDue = errors.New("no words due for study")

// extraSessionSize is how many learned words an extra round picks
const extraSessionSize = 20

// BuildOptions controls session composition
type BuildOptions struct {
	// Extra selects a bonus round of already-learned words instead of
	// the normal due-reviews-plus-new mix
	Extra bool
	// DailyNewCap limits how many unseen words a normal session adds
	DailyNewCap int
}

// BuildSession selects and shuffles the words for one drill session.
// A normal session takes every due review plus unseen words up to the
// cap, in semester order. An extra session takes a random sample of
// learned words.
func BuildSession(words []models.WordWithProgress, sched *Scheduler, rng *rand.Rand, opts BuildOptions) ([]*SessionWord, error) {
	var selected []*SessionWord

	if opts.Extra {
		learned := make([]models.WordWithProgress, 0, len(words))
		for _, w := range words {
			if !w.IsNew() {
				learned = append(learned, w)
			}
		}
		if len(learned) == 0 {
			return nil, ErrNothingDue
		}

		rng.Shuffle(len(learned), func(i, j int) {
			learned[i], learned[j] = learned[j], learned[i]
		})
		if len(learned) > extraSessionSize {
			learned = learned[:extraSessionSize]
		}
		for _, w := range learned {
			selected = append(selected, newSessionWord(w, false))
		}
	} else {
		newBudget := opts.DailyNewCap
		for _, w := range words {
			if w.IsNew() {
				if newBudget > 0 {
					selected = append(selected, newSessionWord(w, true))
					newBudget--
				}
				continue
			}
			// Studied words without a scheduled review are skipped,
			// not treated as due
			if p := w.Progress; p != nil && p.NextReview != nil && sched.IsDue(p.NextReview) {
				selected = append(selected, newSessionWord(w, false))
			}
		}
		if len(selected) == 0 {
			return nil, ErrNothingDue
		}
	}

	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected, nil
}

func newSessionWord(w models.WordWithProgress, isNew bool) *SessionWord {
	sw := &SessionWord{
		Word:  w.VocabWord,
		IsNew: isNew,
		EF:    models.MaxEaseFactor,
	}
	if p := w.Progress; p != nil {
		if p.EF != 0 {
			sw.EF = p.EF
		}
		sw.Interval = p.Interval
		sw.FailureCount = p.FailureCount
	}
	return sw
}
