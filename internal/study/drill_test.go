package study

import (
	"fmt"
	"math/rand"
	"testing"

	"vocabdrill/internal/models"
)

func sessionWords(n int, isNew bool) []*SessionWord {
	words := make([]*SessionWord, n)
	for i := range words {
		words[i] = &SessionWord{
			Word: models.VocabWord{
				ID:      int64(i + 1),
				Word:    fmt.Sprintf("word%d", i+1),
				Meaning: fmt.Sprintf("meaning%d", i+1),
			},
			IsNew: isNew,
			EF:    models.MaxEaseFactor,
		}
	}
	return words
}

func TestModeSelection(t *testing.T) {
	d := NewDrill(nil, rand.New(rand.NewSource(1)))

	tests := []struct {
		name string
		word *SessionWord
		want Mode
	}{
		{"new unseen", &SessionWord{IsNew: true, Step: StepUnseen}, ModeLearn},
		{"new learned", &SessionWord{IsNew: true, Step: StepLearned}, ModeQuiz},
		{"review unseen", &SessionWord{IsNew: false, Step: StepUnseen}, ModeQuiz},
		{"new quiz passed", &SessionWord{IsNew: true, Step: StepQuizPassed}, ModeSpell},
		{"review quiz passed", &SessionWord{IsNew: false, Step: StepQuizPassed}, ModeSpell},
		{"penalty overrides", &SessionWord{IsNew: true, Step: StepUnseen, InPenalty: true}, ModeSpell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.modeFor(tt.word); got != tt.want {
				t.Errorf("modeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDrillHappyPathNewWord(t *testing.T) {
	pool := sessionWords(1, true)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w, mode, ok := d.Next()
	if !ok || mode != ModeLearn {
		t.Fatalf("first card: mode = %q ok = %v, want learn", mode, ok)
	}

	d.MarkLearned(w)
	w, mode, ok = d.Next()
	if !ok || mode != ModeQuiz {
		t.Fatalf("second card: mode = %q, want quiz", mode)
	}

	if outcome := d.AnswerQuiz(w, true); outcome != nil {
		t.Fatal("correct quiz answer should not produce an outcome")
	}
	w, mode, ok = d.Next()
	if !ok || mode != ModeSpell {
		t.Fatalf("third card: mode = %q, want spell", mode)
	}

	correct, outcome := d.SubmitSpelling(w, " Word1 ")
	if !correct {
		t.Fatal("spelling should match ignoring case and whitespace")
	}
	if outcome == nil || !outcome.Success {
		t.Fatal("finishing cleanly should produce a success outcome")
	}

	if _, _, ok := d.Next(); ok {
		t.Error("drill should be finished")
	}
	if d.CompletedNew() != 1 || d.CompletedReview() != 0 {
		t.Errorf("completed = (%d, %d), want (1, 0)", d.CompletedNew(), d.CompletedReview())
	}
}

func TestDrillQuizFailureEntersPenalty(t *testing.T) {
	pool := sessionWords(1, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w, mode, _ := d.Next()
	if mode != ModeQuiz {
		t.Fatalf("mode = %q, want quiz", mode)
	}

	outcome := d.AnswerQuiz(w, false)
	if outcome == nil || outcome.Success {
		t.Fatal("failed quiz should produce a failure outcome")
	}
	if !w.InPenalty || w.Step != StepUnseen {
		t.Fatal("failed quiz should reset the word into the penalty loop")
	}
	if w.FailureCount != 1 {
		t.Errorf("failure count = %d, want 1", w.FailureCount)
	}

	// Penalty loop: three consecutive correct spellings to escape,
	// with a success write on the escaping round
	for i := 0; i < penaltyTarget; i++ {
		pw, pmode, ok := d.Next()
		if !ok || pmode != ModeSpell || pw != w {
			t.Fatalf("penalty round %d: got mode %q", i, pmode)
		}
		correct, out := d.SubmitSpelling(pw, pw.Word.Word)
		if !correct {
			t.Fatalf("penalty round %d: spelling rejected", i)
		}
		if i < penaltyTarget-1 {
			if out != nil {
				t.Fatalf("penalty round %d: no outcome expected, got %+v", i, out)
			}
		} else if out == nil || !out.Success {
			t.Fatalf("escaping the penalty loop should record a success, got %+v", out)
		}
	}

	if w.InPenalty || w.Step != StepDone {
		t.Errorf("after 3 correct spellings: inPenalty=%v step=%v, want done", w.InPenalty, w.Step)
	}
	if _, _, ok := d.Next(); ok {
		t.Error("drill should be finished")
	}
	if d.CompletedReview() != 1 {
		t.Errorf("completed reviews = %d, want 1", d.CompletedReview())
	}
}

func TestDrillPenaltyResetOnMiss(t *testing.T) {
	pool := sessionWords(1, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w, _, _ := d.Next()
	d.AnswerQuiz(w, false)

	// Two correct, then a miss: progress resets and the miss is
	// recorded like any other spelling failure
	d.SubmitSpelling(w, w.Word.Word)
	d.SubmitSpelling(w, w.Word.Word)
	correct, out := d.SubmitSpelling(w, "wrong")
	if correct {
		t.Fatal("wrong spelling accepted")
	}
	if out == nil || out.Success {
		t.Fatalf("penalty miss should record a failure, got %+v", out)
	}
	if w.PenaltyProgress != 0 {
		t.Errorf("penalty progress = %d, want reset to 0", w.PenaltyProgress)
	}
	if w.FailureCount != 2 {
		t.Errorf("failure count = %d, want 2 after quiz miss and penalty miss", w.FailureCount)
	}

	// Still needs three in a row
	for i := 0; i < penaltyTarget; i++ {
		d.SubmitSpelling(w, w.Word.Word)
	}
	if w.Step != StepDone {
		t.Error("word should be done after three consecutive correct spellings")
	}
}

func TestDrillRemediatedNewWordCountsAsReview(t *testing.T) {
	pool := sessionWords(1, true)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w, _, _ := d.Next()
	d.MarkLearned(w)
	d.Next()
	d.AnswerQuiz(w, false)

	for i := 0; i < penaltyTarget; i++ {
		d.Next()
		d.SubmitSpelling(w, w.Word.Word)
	}

	if w.Step != StepDone {
		t.Fatal("word should be done after escaping the penalty loop")
	}
	if d.CompletedNew() != 0 || d.CompletedReview() != 1 {
		t.Errorf("completed = (%d, %d), want (0, 1): remediated words count as review",
			d.CompletedNew(), d.CompletedReview())
	}
}

func TestDrillSpellFailureEntersPenalty(t *testing.T) {
	pool := sessionWords(1, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w, _, _ := d.Next()
	d.AnswerQuiz(w, true)

	correct, outcome := d.SubmitSpelling(w, "nope")
	if correct {
		t.Fatal("wrong spelling accepted")
	}
	if outcome == nil || outcome.Success {
		t.Fatal("first spelling miss should record a failure")
	}
	if !w.InPenalty || w.Step != StepUnseen {
		t.Error("spelling miss should enter the penalty loop")
	}
}

func TestDrillOutcomesPerWord(t *testing.T) {
	// Every word fails its quiz once and then escapes the penalty
	// loop: exactly one failure write and one success write each
	pool := sessionWords(5, false)
	d := NewDrill(pool, rand.New(rand.NewSource(7)))

	failures := make(map[int64]int)
	successes := make(map[int64]int)
	for {
		w, mode, ok := d.Next()
		if !ok {
			break
		}
		var out *Outcome
		switch mode {
		case ModeLearn:
			d.MarkLearned(w)
		case ModeQuiz:
			out = d.AnswerQuiz(w, w.FailureCount > 0)
		case ModeSpell:
			_, out = d.SubmitSpelling(w, w.Word.Word)
		}
		if out != nil {
			if out.Success {
				successes[w.Word.ID]++
			} else {
				failures[w.Word.ID]++
			}
		}
	}

	for _, w := range pool {
		id := w.Word.ID
		if failures[id] != 1 {
			t.Errorf("word %d recorded %d failures, want 1", id, failures[id])
		}
		if successes[id] != 1 {
			t.Errorf("word %d recorded %d successes, want 1", id, successes[id])
		}
	}
}

func TestDrillAntiRepeat(t *testing.T) {
	pool := sessionWords(5, false)
	d := NewDrill(pool, rand.New(rand.NewSource(3)))

	var last *SessionWord
	for i := 0; i < 50; i++ {
		w, _, ok := d.Next()
		if !ok {
			t.Fatal("drill ended unexpectedly")
		}
		if last != nil && w == last {
			t.Fatalf("word %d repeated back to back", w.Word.ID)
		}
		last = w
		// Never answer, so the pool stays pending
	}
}

func TestDrillQueueWindow(t *testing.T) {
	pool := sessionWords(50, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	seen := make(map[int64]bool)
	for i := 0; i < 500; i++ {
		w, _, ok := d.Next()
		if !ok {
			t.Fatal("drill ended unexpectedly")
		}
		seen[w.Word.ID] = true
	}

	if len(seen) > queueWindow {
		t.Errorf("rotation exposed %d words, want at most %d", len(seen), queueWindow)
	}

	// Finishing one word does not rotate later pool words in early
	var queuedWord *SessionWord
	for _, w := range pool {
		if seen[w.Word.ID] {
			queuedWord = w
			break
		}
	}
	queuedWord.Step = StepDone

	before := len(seen)
	for i := 0; i < 500; i++ {
		w, _, ok := d.Next()
		if !ok {
			break
		}
		seen[w.Word.ID] = true
	}
	if len(seen) != before {
		t.Errorf("rotation exposed %d words after one completion, want still %d", len(seen), before)
	}

	// Once every queued word finishes, the next batch rotates in
	for _, w := range pool {
		if seen[w.Word.ID] {
			w.Step = StepDone
		}
	}
	w, _, ok := d.Next()
	if !ok {
		t.Fatal("drill ended with pool words pending")
	}
	if seen[w.Word.ID] {
		t.Errorf("word %d reappeared after its batch finished", w.Word.ID)
	}
}

func TestQuizOptions(t *testing.T) {
	pool := sessionWords(10, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	w := pool[0]
	options := d.QuizOptions(w)

	if len(options) != quizDistractors+1 {
		t.Fatalf("got %d options, want %d", len(options), quizDistractors+1)
	}

	found := false
	for _, o := range options {
		if o == w.Word.Meaning {
			found = true
		}
	}
	if !found {
		t.Error("options must include the correct meaning")
	}
}

func TestQuizOptionsSmallPool(t *testing.T) {
	pool := sessionWords(2, false)
	d := NewDrill(pool, rand.New(rand.NewSource(1)))

	options := d.QuizOptions(pool[0])
	if len(options) != 2 {
		t.Errorf("got %d options, want 2 for a two-word pool", len(options))
	}
}
