package validation

import "testing"

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid ascii", "alice_01", false},
		{"valid chinese", "小明", false},
		{"mixed", "ming_小明", false},
		{"minimum length", "ab", false},
		{"maximum length", "abcdefghijklmnopqrst", false},
		{"empty", "", true},
		{"too short", "a", true},
		{"too long", "abcdefghijklmnopqrstu", true},
		{"spaces", "new user", true},
		{"punctuation", "user!", true},
		{"email-like", "user@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword(""); err != nil {
		t.Errorf("empty password should be allowed, got %v", err)
	}
	if err := ValidatePassword("secret"); err != nil {
		t.Errorf("normal password rejected: %v", err)
	}

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidatePassword(string(long)); err == nil {
		t.Error("expected error for password over 72 bytes")
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"semester-1", false},
		{"g7a", false},
		{"", true},
		{"Semester", true},
		{"has space", true},
		{"-leading", true},
		{"trailing-", true},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.slug, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWord(t *testing.T) {
	if err := ValidateWord("apple", "苹果"); err != nil {
		t.Errorf("valid word rejected: %v", err)
	}
	if err := ValidateWord("", "meaning"); err == nil {
		t.Error("expected error for empty word")
	}
	if err := ValidateWord("apple", "  "); err == nil {
		t.Error("expected error for blank meaning")
	}
}
