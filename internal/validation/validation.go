package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Error marks a user-input problem so handlers can answer 400 instead
// of treating it as an internal failure
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a validation error
func Errorf(format string, args ...interface{}) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

const (
	MinUsernameLength = 2
	MaxUsernameLength = 20
	MaxPasswordLength = 72 // bcrypt input limit
)

// usernameRegexp allows letters, digits, underscore, and CJK ideographs
var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_\x{4e00}-\x{9fa5}]+$`)

// ValidateUsername checks username format and length
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return Errorf("username is required")
	}

	length := utf8.RuneCountInString(username)
	if length < MinUsernameLength || length > MaxUsernameLength {
		return Errorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	}

	if !usernameRegexp.MatchString(username) {
		return Errorf("username may only contain letters, digits, underscores, and Chinese characters")
	}

	return nil
}

// ValidatePassword checks an optional password; empty passwords are allowed
func ValidatePassword(password string) error {
	if password == "" {
		return nil
	}
	if len(password) > MaxPasswordLength {
		return Errorf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateSemesterName checks a semester display name
func ValidateSemesterName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Errorf("semester name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return Errorf("semester name must be at most 100 characters")
	}
	return nil
}

// slugRegexp matches lowercase URL-safe identifiers
var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug checks a semester slug
func ValidateSlug(slug string) error {
	if slug == "" {
		return Errorf("slug is required")
	}
	if len(slug) > 64 {
		return Errorf("slug must be at most 64 characters")
	}
	if !slugRegexp.MatchString(slug) {
		return Errorf("slug may only contain lowercase letters, digits, and hyphens")
	}
	return nil
}

// ValidateWord checks the required fields of a vocabulary entry
func ValidateWord(word, meaning string) error {
	if strings.TrimSpace(word) == "" {
		return Errorf("word is required")
	}
	if strings.TrimSpace(meaning) == "" {
		return Errorf("meaning is required")
	}
	if utf8.RuneCountInString(word) > 100 {
		return Errorf("word must be at most 100 characters")
	}
	return nil
}
