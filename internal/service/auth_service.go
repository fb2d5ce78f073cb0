package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/security"
	"vocabdrill/internal/validation"
)

var (
	// ErrInvalidCredentials is returned when a password check fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when an operation names an unknown user
	ErrUserNotFound = errors.New("user not found")
)

// AuthService handles login, implicit registration, and passwords
type AuthService struct {
	users  *repository.UserRepository
	tokens *security.TokenManager
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, tokens *security.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// LoginResult is what a successful login returns to the client
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	Created  bool   `json:"created"`
}

// Login signs a user in, creating the account on first use. Accounts may
// be passwordless; once a password is set it is required.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	created := false
	if user == nil {
		user, err = s.register(username, password)
		if err != nil {
			return nil, err
		}
		created = true
	} else {
		if user.HasPassword() {
			if !security.CheckPassword(password, user.PasswordHash) {
				return nil, ErrInvalidCredentials
			}
		} else if password != "" {
			// First login with a password on a passwordless account sets it
			hash, err := security.HashPassword(password)
			if err != nil {
				return nil, err
			}
			if err := s.users.UpdatePassword(username, hash); err != nil {
				return nil, err
			}
		}
	}

	if err := s.users.UpdateLastLogin(username); err != nil {
		log.Printf("Failed to update last login for %s: %v", username, err)
	}

	token, err := s.tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		Created:  created,
	}, nil
}

func (s *AuthService) register(username, password string) (*models.User, error) {
	user := &models.User{Username: username}
	if password != "" {
		hash, err := security.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Printf("Registered new user: %s", username)
	return user, nil
}

// ChangePassword updates a user's password after verifying the old one
func (s *AuthService) ChangePassword(username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return validation.Errorf("new password is required")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.HasPassword() && !security.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(username, hash)
}

// ListUsers returns every account for the admin panel
func (s *AuthService) ListUsers() ([]*models.User, error) {
	return s.users.List()
}

// SetAdmin toggles the admin flag on an account
func (s *AuthService) SetAdmin(username string, isAdmin bool) error {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.SetAdmin(username, isAdmin)
}

// DeleteUser removes an account and its study data
func (s *AuthService) DeleteUser(username string) error {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.users.Delete(username)
}
