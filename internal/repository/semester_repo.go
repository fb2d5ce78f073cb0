package repository

import (
	"database/sql"
	"fmt"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// SemesterRepository handles semester data access
type SemesterRepository struct {
	db database.DBTX
}

// NewSemesterRepository creates a new semester repository
func NewSemesterRepository(db database.DBTX) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// ListActive returns active semesters with their word counts, in sort order
func (r *SemesterRepository) ListActive() ([]*models.SemesterSummary, error) {
	dialect := r.db.GetDialect()
	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT s.id, s.name, s.slug, s.description, s.sort_order, s.is_active, s.created_at,
		       COUNT(w.id)
		FROM semesters s
		LEFT JOIN vocab_words w ON w.semester_id = s.id
		WHERE s.is_active = %s
		GROUP BY s.id, s.name, s.slug, s.description, s.sort_order, s.is_active, s.created_at
		ORDER BY s.sort_order, s.id;`, dialect.BoolValue(true)))
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	defer rows.Close()

	return scanSemesterSummaries(rows)
}

// ListAll returns every semester including inactive ones
func (r *SemesterRepository) ListAll() ([]*models.SemesterSummary, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.name, s.slug, s.description, s.sort_order, s.is_active, s.created_at,
		       COUNT(w.id)
		FROM semesters s
		LEFT JOIN vocab_words w ON w.semester_id = s.id
		GROUP BY s.id, s.name, s.slug, s.description, s.sort_order, s.is_active, s.created_at
		ORDER BY s.sort_order, s.id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	defer rows.Close()

	return scanSemesterSummaries(rows)
}

func scanSemesterSummaries(rows *sql.Rows) ([]*models.SemesterSummary, error) {
	var semesters []*models.SemesterSummary
	for rows.Next() {
		s := &models.SemesterSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description,
			&s.SortOrder, &s.IsActive, &s.CreatedAt, &s.WordCount); err != nil {
			return nil, fmt.Errorf("failed to scan semester: %w", err)
		}
		semesters = append(semesters, s)
	}
	return semesters, rows.Err()
}

// GetByID retrieves a semester by ID, returning nil if not found
func (r *SemesterRepository) GetByID(id int64) (*models.Semester, error) {
	s := &models.Semester{}
	err := r.db.QueryRow(`
		SELECT id, name, slug, description, sort_order, is_active, created_at
		FROM semesters WHERE id = ?;`, id).Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.SortOrder, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get semester: %w", err)
	}
	return s, nil
}

// GetBySlug retrieves a semester by slug, returning nil if not found
func (r *SemesterRepository) GetBySlug(slug string) (*models.Semester, error) {
	s := &models.Semester{}
	err := r.db.QueryRow(`
		SELECT id, name, slug, description, sort_order, is_active, created_at
		FROM semesters WHERE slug = ?;`, slug).Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.SortOrder, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get semester: %w", err)
	}
	return s, nil
}

// Create inserts a new semester and sets its ID
func (r *SemesterRepository) Create(s *models.Semester) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO semesters (name, slug, description, sort_order, is_active)
		VALUES (?, ?, ?, ?, ?);`,
		s.Name, s.Slug, s.Description, s.SortOrder, s.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create semester: %w", err)
	}
	s.ID = id
	return nil
}

// Update modifies an existing semester
func (r *SemesterRepository) Update(s *models.Semester) error {
	_, err := r.db.Exec(`
		UPDATE semesters
		SET name = ?, slug = ?, description = ?, sort_order = ?, is_active = ?
		WHERE id = ?;`,
		s.Name, s.Slug, s.Description, s.SortOrder, s.IsActive, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update semester: %w", err)
	}
	return nil
}

// Delete removes a semester; its words cascade via the foreign key
func (r *SemesterRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM semesters WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete semester: %w", err)
	}
	return nil
}
