package repository

import (
	"database/sql"
	"fmt"
	"time"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns it with its ID set
func (r *UserRepository) Create(user *models.User) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO users (username, password_hash, is_admin)
		VALUES (?, ?, ?);`,
		user.Username, user.PasswordHash, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// GetByUsername retrieves a user by username, returning nil if not found
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, username, password_hash, is_admin, created_at, last_login_at
		FROM users WHERE username = ?;`, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin,
		&user.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}
	return user, nil
}

// UpdateLastLogin stamps the user's last successful login
func (r *UserRepository) UpdateLastLogin(username string) error {
	_, err := r.db.Exec(`
		UPDATE users SET last_login_at = ? WHERE username = ?;`,
		time.Now(), username)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the user's password hash
func (r *UserRepository) UpdatePassword(username, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE users SET password_hash = ? WHERE username = ?;`,
		passwordHash, username)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetAdmin grants or revokes the admin flag
func (r *UserRepository) SetAdmin(username string, isAdmin bool) error {
	_, err := r.db.Exec(`
		UPDATE users SET is_admin = ? WHERE username = ?;`,
		isAdmin, username)
	if err != nil {
		return fmt.Errorf("failed to update admin flag: %w", err)
	}
	return nil
}

// List returns all users ordered by creation time
func (r *UserRepository) List() ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, username, password_hash, is_admin, created_at, last_login_at
		FROM users ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var lastLogin sql.NullTime
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash,
			&user.IsAdmin, &user.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if lastLogin.Valid {
			user.LastLoginAt = &lastLogin.Time
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Delete removes a user and their progress rows
func (r *UserRepository) Delete(username string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM user_progress WHERE username = ?;`, username); err != nil {
		return fmt.Errorf("failed to delete user progress: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM study_stats WHERE username = ?;`, username); err != nil {
		return fmt.Errorf("failed to delete user stats: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE username = ?;`, username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}
