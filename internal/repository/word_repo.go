package repository

import (
	"database/sql"
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// insertBatchSize bounds how many words one transaction inserts at a time
const insertBatchSize = 100

// WordRepository handles vocabulary word data access
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

// ListBySemester returns a semester's words in their teaching order
func (r *WordRepository) ListBySemester(semesterID int64) ([]*models.VocabWord, error) {
	rows, err := r.db.Query(`
		SELECT id, semester_id, word, phonetic, meaning, example_en, example_cn, sort_order, created_at
		FROM vocab_words
		WHERE semester_id = ?
		ORDER BY sort_order, id;`, semesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	var words []*models.VocabWord
	for rows.Next() {
		w := &models.VocabWord{}
		if err := rows.Scan(&w.ID, &w.SemesterID, &w.Word, &w.Phonetic, &w.Meaning,
			&w.ExampleEn, &w.ExampleCn, &w.SortOrder, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// GetByID retrieves a word by ID, returning nil if not found
func (r *WordRepository) GetByID(id int64) (*models.VocabWord, error) {
	w := &models.VocabWord{}
	err := r.db.QueryRow(`
		SELECT id, semester_id, word, phonetic, meaning, example_en, example_cn, sort_order, created_at
		FROM vocab_words WHERE id = ?;`, id).Scan(
		&w.ID, &w.SemesterID, &w.Word, &w.Phonetic, &w.Meaning,
		&w.ExampleEn, &w.ExampleCn, &w.SortOrder, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

// Create inserts one word and sets its ID
func (r *WordRepository) Create(w *models.VocabWord) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO vocab_words (semester_id, word, phonetic, meaning, example_en, example_cn, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		w.SemesterID, w.Word, w.Phonetic, w.Meaning, w.ExampleEn, w.ExampleCn, w.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	w.ID = id
	return nil
}

// CreateBatch inserts words in transactional batches, preserving order
func (r *WordRepository) CreateBatch(words []*models.VocabWord) error {
	for start := 0; start < len(words); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(words) {
			end = len(words)
		}
		if err := r.createChunk(words[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *WordRepository) createChunk(words []*models.VocabWord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range words {
		id, err := tx.ExecReturningID(`
			INSERT INTO vocab_words (semester_id, word, phonetic, meaning, example_en, example_cn, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?);`,
			w.SemesterID, w.Word, w.Phonetic, w.Meaning, w.ExampleEn, w.ExampleCn, w.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to insert word %q: %w", w.Word, err)
		}
		w.ID = id
	}

	return tx.Commit()
}

// Update modifies an existing word
func (r *WordRepository) Update(w *models.VocabWord) error {
	_, err := r.db.Exec(`
		UPDATE vocab_words
		SET word = ?, phonetic = ?, meaning = ?, example_en = ?, example_cn = ?, sort_order = ?
		WHERE id = ?;`,
		w.Word, w.Phonetic, w.Meaning, w.ExampleEn, w.ExampleCn, w.SortOrder, w.ID)
	if err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return nil
}

// Delete removes one word; progress rows cascade
func (r *WordRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM vocab_words WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// DeleteBySemester removes all of a semester's words
func (r *WordRepository) DeleteBySemester(semesterID int64) error {
	_, err := r.db.Exec(`DELETE FROM vocab_words WHERE semester_id = ?;`, semesterID)
	if err != nil {
		return fmt.Errorf("failed to delete semester words: %w", err)
	}
	return nil
}
