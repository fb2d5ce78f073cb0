package study

import (
	"log"

	"vocabdrill/internal/models"
)

// flushBatchSize is how many buffered updates trigger a write-through
const flushBatchSize = 5

// Flusher persists a batch of progress updates
type Flusher interface {
	Flush(updates []models.ProgressUpdate) error
}

// Sink batches progress updates so a drill session writes through every
// few answers instead of on each one. A failed flush is logged and its
// batch dropped; the session keeps running on in-memory state.
type Sink struct {
	flusher Flusher
	buf     []models.ProgressUpdate
}

// NewSink creates a sink writing through the given flusher
func NewSink(flusher Flusher) *Sink {
	return &Sink{flusher: flusher}
}

// Add buffers one update, flushing when the batch size is reached
func (s *Sink) Add(update models.ProgressUpdate) {
	s.buf = append(s.buf, update)
	if len(s.buf) >= flushBatchSize {
		s.flush()
	}
}

// Pending returns how many updates are buffered but not yet flushed
func (s *Sink) Pending() int {
	return len(s.buf)
}

// Close flushes anything still buffered; called at session end
func (s *Sink) Close() {
	s.flush()
}

func (s *Sink) flush() {
	if len(s.buf) == 0 {
		return
	}
	batch := s.buf
	s.buf = nil

	if err := s.flusher.Flush(batch); err != nil {
		log.Printf("Failed to flush %d progress updates: %v", len(batch), err)
	}
}
