package study

import (
	"math/rand"
	"strings"

	"vocabdrill/internal/models"
)

// Step tracks a word's progress inside a single drill session.
// Words advance 0 -> 1 -> 1.5 -> 2 and leave the session at 2.
type Step float64

const (
	StepUnseen     Step = 0
	StepLearned    Step = 1
	StepQuizPassed Step = 1.5
	StepDone       Step = 2
)

// Mode is the exercise kind presented for the current word
type Mode string

const (
	ModeLearn Mode = "learn"
	ModeQuiz  Mode = "quiz"
	ModeSpell Mode = "spell"
)

const (
	// queueWindow caps how many words are in rotation at once
	queueWindow = 30
	// penaltyTarget is the consecutive correct spellings needed to
	// escape the penalty loop
	penaltyTarget = 3
	// quizDistractors is the number of wrong meanings shown per quiz
	quizDistractors = 3
)

// SessionWord is one word's in-session drill state layered over its
// persisted progress
type SessionWord struct {
	Word  models.VocabWord `json:"word"`
	IsNew bool             `json:"isNew"`

	Step            Step `json:"step"`
	InPenalty       bool `json:"inPenalty"`
	PenaltyProgress int  `json:"penaltyProgress"`

	// carried from persisted progress for the scheduler
	EF           int `json:"-"`
	Interval     int `json:"-"`
	FailureCount int `json:"-"`
}

// Outcome is a scheduling event produced by answering an exercise.
// Every miss records a failure; a word records a success when it
// completes, whether cleanly or by escaping the penalty loop.
type Outcome struct {
	Word    *SessionWord
	Success bool
}

// Drill runs one user's session: a shuffled pool of session words, a
// bounded rotation queue, and the mode selection rules
type Drill struct {
	pool    []*SessionWord
	queue   []*SessionWord
	current *SessionWord
	rng     *rand.Rand

	doneNew    int
	doneReview int
}

// NewDrill creates a drill over an already-shuffled pool
func NewDrill(pool []*SessionWord, rng *rand.Rand) *Drill {
	return &Drill{pool: pool, rng: rng}
}

// Current returns the word being drilled, or nil between cards
func (d *Drill) Current() *SessionWord {
	return d.current
}

// CompletedNew returns how many unseen words finished this session
func (d *Drill) CompletedNew() int { return d.doneNew }

// CompletedReview returns how many review words finished this session
func (d *Drill) CompletedReview() int { return d.doneReview }

// Remaining returns how many words have not yet reached step 2
func (d *Drill) Remaining() int {
	n := 0
	for _, w := range d.pool {
		if w.Step < StepDone {
			n++
		}
	}
	return n
}

// Next picks the next word and its exercise mode. It returns ok=false
// when every word in the pool has reached step 2.
func (d *Drill) Next() (*SessionWord, Mode, bool) {
	d.refillQueue()

	pending := make([]*SessionWord, 0, len(d.queue))
	for _, w := range d.queue {
		if w.Step < StepDone {
			pending = append(pending, w)
		}
	}
	if len(pending) == 0 {
		d.current = nil
		return nil, "", false
	}

	// Avoid showing the same word twice in a row when possible
	candidates := pending
	if len(pending) > 1 && d.current != nil {
		filtered := make([]*SessionWord, 0, len(pending))
		for _, w := range pending {
			if w != d.current {
				filtered = append(filtered, w)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	d.current = candidates[d.rng.Intn(len(candidates))]
	return d.current, d.modeFor(d.current), true
}

// refillQueue replaces the rotation queue with the next window of
// pending pool words, in shuffle order. Refill happens only once every
// queued word has finished; later pool words never rotate in early.
func (d *Drill) refillQueue() {
	for _, w := range d.queue {
		if w.Step < StepDone {
			return
		}
	}

	d.queue = d.queue[:0]
	for _, w := range d.pool {
		if w.Step < StepDone {
			d.queue = append(d.queue, w)
			if len(d.queue) >= queueWindow {
				break
			}
		}
	}
}

// modeFor selects the exercise for a word. Penalty words always spell,
// unseen words are introduced before being quizzed, and everything that
// passed its quiz spells to finish.
func (d *Drill) modeFor(w *SessionWord) Mode {
	switch {
	case w.InPenalty:
		return ModeSpell
	case w.IsNew && w.Step == StepUnseen:
		return ModeLearn
	case (w.IsNew && w.Step == StepLearned) || (!w.IsNew && w.Step == StepUnseen):
		return ModeQuiz
	default:
		return ModeSpell
	}
}

// MarkLearned acknowledges a learn card, advancing the word to step 1
func (d *Drill) MarkLearned(w *SessionWord) {
	if w.Step == StepUnseen {
		w.Step = StepLearned
	}
}

// AnswerQuiz applies a quiz answer. A wrong answer drops the word into
// the penalty loop and records its failure.
func (d *Drill) AnswerQuiz(w *SessionWord, correct bool) *Outcome {
	if correct {
		w.Step = StepQuizPassed
		return nil
	}

	w.Step = StepUnseen
	w.InPenalty = true
	w.PenaltyProgress = 0
	w.FailureCount++
	return &Outcome{Word: w, Success: false}
}

// SubmitSpelling applies a typed answer. Comparison ignores case and
// surrounding whitespace.
func (d *Drill) SubmitSpelling(w *SessionWord, answer string) (correct bool, outcome *Outcome) {
	correct = strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(w.Word.Word))

	if w.InPenalty {
		if !correct {
			w.PenaltyProgress = 0
			w.FailureCount++
			return false, &Outcome{Word: w, Success: false}
		}
		w.PenaltyProgress++
		if w.PenaltyProgress < penaltyTarget {
			return true, nil
		}
		w.InPenalty = false
		w.PenaltyProgress = 0
		d.finish(w, true)
		return true, &Outcome{Word: w, Success: true}
	}

	if !correct {
		w.Step = StepUnseen
		w.InPenalty = true
		w.PenaltyProgress = 0
		w.FailureCount++
		return false, &Outcome{Word: w, Success: false}
	}

	d.finish(w, false)
	return true, &Outcome{Word: w, Success: true}
}

// finish marks a word done and tallies it for the session stats.
// Remediated words always count as review, even when new this session.
func (d *Drill) finish(w *SessionWord, remediated bool) {
	w.Step = StepDone
	if w.IsNew && !remediated {
		d.doneNew++
	} else {
		d.doneReview++
	}
}

// QuizOptions builds the multiple-choice meanings for a word: its own
// meaning plus distractors drawn from the rest of the pool, shuffled
func (d *Drill) QuizOptions(w *SessionWord) []string {
	options := []string{w.Word.Meaning}

	others := make([]*SessionWord, 0, len(d.pool))
	for _, o := range d.pool {
		if o != w {
			others = append(others, o)
		}
	}
	d.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	for i := 0; i < len(others) && i < quizDistractors; i++ {
		options = append(options, others[i].Word.Meaning)
	}

	d.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
