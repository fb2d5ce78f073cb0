package service

import (
	"errors"
	"log"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/study"
)

var (
	// ErrSessionNotFound is returned for unknown or expired drill tokens
	ErrSessionNotFound = errors.New("study session not found")
	// ErrNothingDue mirrors the builder's empty-session signal
	ErrNothingDue = study.ErrNothingDue
	// ErrWrongMode is returned when an answer does not match the
	// exercise currently presented
	ErrWrongMode = errors.New("answer does not match the current exercise")
)

// StudyService owns the in-memory drill sessions, keyed by opaque token.
// Each session wraps a drill state machine and a batched progress sink.
type StudyService struct {
	progress  *repository.ProgressRepository
	stats     *repository.StatsRepository
	semesters *repository.SemesterRepository
	sched     *study.Scheduler

	dailyNewCap int
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*drillSession
}

type drillSession struct {
	token      string
	username   string
	semesterID int64

	mu         sync.Mutex
	drill      *study.Drill
	sink       *study.Sink
	lastActive time.Time

	currentMode    study.Mode
	currentOptions []string
	finished       bool
}

// NewStudyService creates a study service
func NewStudyService(
	progress *repository.ProgressRepository,
	stats *repository.StatsRepository,
	semesters *repository.SemesterRepository,
	sched *study.Scheduler,
	dailyNewCap int,
	idleTimeout time.Duration,
) *StudyService {
	return &StudyService{
		progress:    progress,
		stats:       stats,
		semesters:   semesters,
		sched:       sched,
		dailyNewCap: dailyNewCap,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*drillSession),
	}
}

// progressFlusher binds the progress repository to one user's session
type progressFlusher struct {
	repo     *repository.ProgressRepository
	username string
}

func (f *progressFlusher) Flush(updates []models.ProgressUpdate) error {
	return f.repo.UpsertBatch(f.username, updates)
}

// Card is what the client sees for one exercise. Fields are withheld
// per mode: spelling hides the word, quizzes hide the meaning.
type Card struct {
	Mode            study.Mode `json:"mode"`
	WordID          int64      `json:"wordId"`
	Word            string     `json:"word,omitempty"`
	Phonetic        string     `json:"phonetic,omitempty"`
	Meaning         string     `json:"meaning,omitempty"`
	ExampleEn       string     `json:"exampleEn,omitempty"`
	ExampleCn       string     `json:"exampleCn,omitempty"`
	Options         []string   `json:"options,omitempty"`
	AudioURL        string     `json:"audioUrl,omitempty"`
	InPenalty       bool       `json:"inPenalty"`
	PenaltyProgress int        `json:"penaltyProgress"`
	Remaining       int        `json:"remaining"`
}

// SessionState is the response for session endpoints: either the next
// card or the completion summary
type SessionState struct {
	Token        string `json:"token"`
	Done         bool   `json:"done"`
	Card         *Card  `json:"card,omitempty"`
	CompletedNew int    `json:"completedNew,omitempty"`
	CompletedRev int    `json:"completedReview,omitempty"`
}

// Start builds a session for the user and returns its first card.
// Extra sessions drill a random sample of already-learned words.
func (s *StudyService) Start(username string, semesterID int64, extra bool) (*SessionState, error) {
	sem, err := s.semesters.GetByID(semesterID)
	if err != nil {
		return nil, err
	}
	if sem == nil {
		return nil, ErrSemesterNotFound
	}

	words, err := s.progress.ListWordsWithProgress(username, semesterID)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pool, err := study.BuildSession(words, s.sched, rng, study.BuildOptions{
		Extra:       extra,
		DailyNewCap: s.dailyNewCap,
	})
	if err != nil {
		return nil, err
	}

	sess := &drillSession{
		token:      security.NewSessionToken(),
		username:   username,
		semesterID: semesterID,
		drill:      study.NewDrill(pool, rng),
		sink:       study.NewSink(&progressFlusher{repo: s.progress, username: username}),
		lastActive: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.token] = sess
	s.mu.Unlock()

	log.Printf("Started %s session for %s: %d words",
		sessionKind(extra), username, len(pool))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.advance(sess)
}

func sessionKind(extra bool) string {
	if extra {
		return "extra"
	}
	return "study"
}

// get looks a session up and checks ownership
func (s *StudyService) get(token, username string) (*drillSession, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok || sess.username != username {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// State returns the current card without advancing anything
func (s *StudyService) State(token, username string) (*SessionState, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	w := sess.drill.Current()
	if w == nil || sess.finished {
		return s.advance(sess)
	}
	return sess.state(w), nil
}

// Next advances to the following card, finalizing the session when the
// pool is exhausted
func (s *StudyService) Next(token, username string) (*SessionState, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()
	return s.advance(sess)
}

// advance picks the next card or finalizes a finished session.
// Caller holds sess.mu.
func (s *StudyService) advance(sess *drillSession) (*SessionState, error) {
	w, mode, ok := sess.drill.Next()
	if !ok {
		s.finalize(sess)
		return &SessionState{
			Token:        sess.token,
			Done:         true,
			CompletedNew: sess.drill.CompletedNew(),
			CompletedRev: sess.drill.CompletedReview(),
		}, nil
	}

	sess.currentMode = mode
	sess.currentOptions = nil
	if mode == study.ModeQuiz {
		sess.currentOptions = sess.drill.QuizOptions(w)
	}
	return sess.state(w), nil
}

// state renders the current card. Caller holds sess.mu.
func (sess *drillSession) state(w *study.SessionWord) *SessionState {
	card := &Card{
		Mode:            sess.currentMode,
		WordID:          w.Word.ID,
		InPenalty:       w.InPenalty,
		PenaltyProgress: w.PenaltyProgress,
		Remaining:       sess.drill.Remaining(),
	}

	switch sess.currentMode {
	case study.ModeLearn:
		card.Word = w.Word.Word
		card.Phonetic = w.Word.Phonetic
		card.Meaning = w.Word.Meaning
		card.ExampleEn = w.Word.ExampleEn
		card.ExampleCn = w.Word.ExampleCn
		card.AudioURL = audioURL(w.Word.Word)
	case study.ModeQuiz:
		card.Word = w.Word.Word
		card.Phonetic = w.Word.Phonetic
		card.Options = sess.currentOptions
		card.AudioURL = audioURL(w.Word.Word)
	case study.ModeSpell:
		card.Phonetic = w.Word.Phonetic
		card.Meaning = w.Word.Meaning
		card.ExampleCn = w.Word.ExampleCn
		card.AudioURL = audioURL(w.Word.Word)
	}

	return &SessionState{
		Token: sess.token,
		Card:  card,
	}
}

// audioURL points at the Youdao dictionary voice endpoint
func audioURL(word string) string {
	return "https://dict.youdao.com/dictvoice?audio=" + url.QueryEscape(word) + "&type=2"
}

// MarkLearned acknowledges the learn card for the current word
func (s *StudyService) MarkLearned(token, username string) (*SessionState, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	w := sess.drill.Current()
	if w == nil || sess.currentMode != study.ModeLearn {
		return nil, ErrWrongMode
	}

	sess.drill.MarkLearned(w)
	return s.advance(sess)
}

// QuizResult reports a quiz answer's outcome
type QuizResult struct {
	Correct        bool   `json:"correct"`
	CorrectMeaning string `json:"correctMeaning"`
}

// AnswerQuiz checks a chosen meaning against the current quiz card
func (s *StudyService) AnswerQuiz(token, username, answer string) (*QuizResult, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	w := sess.drill.Current()
	if w == nil || sess.currentMode != study.ModeQuiz {
		return nil, ErrWrongMode
	}

	correct := answer == w.Word.Meaning
	if outcome := sess.drill.AnswerQuiz(w, correct); outcome != nil {
		sess.sink.Add(s.sched.ApplyOutcome(outcome))
	}

	return &QuizResult{Correct: correct, CorrectMeaning: w.Word.Meaning}, nil
}

// SpellResult reports a spelling attempt's outcome
type SpellResult struct {
	Correct         bool   `json:"correct"`
	Word            string `json:"word"`
	InPenalty       bool   `json:"inPenalty"`
	PenaltyProgress int    `json:"penaltyProgress"`
	WordDone        bool   `json:"wordDone"`
}

// SubmitSpelling checks a typed word against the current spelling card
func (s *StudyService) SubmitSpelling(token, username, answer string) (*SpellResult, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = time.Now()

	w := sess.drill.Current()
	if w == nil || sess.currentMode != study.ModeSpell {
		return nil, ErrWrongMode
	}

	correct, outcome := sess.drill.SubmitSpelling(w, answer)
	if outcome != nil {
		sess.sink.Add(s.sched.ApplyOutcome(outcome))
	}

	return &SpellResult{
		Correct:         correct,
		Word:            w.Word.Word,
		InPenalty:       w.InPenalty,
		PenaltyProgress: w.PenaltyProgress,
		WordDone:        w.Step == study.StepDone,
	}, nil
}

// Exit finalizes a session early, flushing buffered progress and
// recording the day's stats
func (s *StudyService) Exit(token, username string) (*SessionState, error) {
	sess, err := s.get(token, username)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.finalize(sess)

	return &SessionState{
		Token:        sess.token,
		Done:         true,
		CompletedNew: sess.drill.CompletedNew(),
		CompletedRev: sess.drill.CompletedReview(),
	}, nil
}

// finalize flushes the sink, records stats, and drops the session.
// Caller holds sess.mu. Finalizing twice is a no-op.
func (s *StudyService) finalize(sess *drillSession) {
	if sess.finished {
		return
	}
	sess.finished = true

	sess.sink.Close()

	doneNew := sess.drill.CompletedNew()
	doneReview := sess.drill.CompletedReview()
	if doneNew > 0 || doneReview > 0 {
		err := s.stats.Increment(sess.username, sess.semesterID, s.sched.Today(), doneNew, doneReview)
		if err != nil {
			log.Printf("Failed to record study stats for %s: %v", sess.username, err)
		}
	}

	s.mu.Lock()
	delete(s.sessions, sess.token)
	s.mu.Unlock()

	log.Printf("Finished session for %s: %d new, %d reviewed",
		sess.username, doneNew, doneReview)
}

// CleanupIdle finalizes sessions with no activity past the idle timeout
// so abandoned drills still persist their buffered progress
func (s *StudyService) CleanupIdle() int {
	cutoff := time.Now().Add(-s.idleTimeout)

	s.mu.Lock()
	var stale []*drillSession
	for _, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			stale = append(stale, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.mu.Lock()
		s.finalize(sess)
		sess.mu.Unlock()
	}

	if len(stale) > 0 {
		log.Printf("Cleaned up %d idle study sessions", len(stale))
	}
	return len(stale)
}

// StartCleanupLoop runs idle-session cleanup on a ticker until the
// channel closes
func (s *StudyService) StartCleanupLoop(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanupIdle()
		case <-done:
			return
		}
	}
}

// FlushAll finalizes every live session; used at server shutdown
func (s *StudyService) FlushAll() {
	s.mu.Lock()
	var all []*drillSession
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	for _, sess := range all {
		sess.mu.Lock()
		s.finalize(sess)
		sess.mu.Unlock()
	}
}

// SessionCount reports live sessions, mostly for tests and diagnostics
func (s *StudyService) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
