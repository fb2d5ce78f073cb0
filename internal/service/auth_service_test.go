package service

import (
	"errors"
	"testing"
)

func TestLoginRegistersNewUser(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	result, err := auth.Login("alice", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !result.Created {
		t.Error("first login should register the account")
	}
	if result.Token == "" {
		t.Error("login should issue a token")
	}

	// Second login finds the existing account
	result, err = auth.Login("alice", "")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if result.Created {
		t.Error("second login should not register again")
	}
}

func TestLoginPasswordEnforcement(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	if _, err := auth.Login("bob", "secret"); err != nil {
		t.Fatalf("registration with password failed: %v", err)
	}

	if _, err := auth.Login("bob", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Login("bob", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty password on protected account: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Login("bob", "secret"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
}

func TestLoginSetsPasswordOnPasswordlessAccount(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	if _, err := auth.Login("carol", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	// Providing a password on a passwordless account adopts it
	if _, err := auth.Login("carol", "newpass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := auth.Login("carol", "other"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("password should now be enforced, err = %v", err)
	}
}

func TestLoginRejectsBadUsernames(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	for _, username := range []string{"", "a", "has space", "user@example.com"} {
		if _, err := auth.Login(username, ""); err == nil {
			t.Errorf("username %q should be rejected", username)
		}
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	if _, err := auth.Login("dave", "old"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if err := auth.ChangePassword("dave", "wrong", "new"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong old password: err = %v", err)
	}
	if err := auth.ChangePassword("dave", "old", "new"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := auth.Login("dave", "new"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if err := auth.ChangePassword("nobody", "x", "y"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestSetAdminAndDelete(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.users, newTestTokens())

	if _, err := auth.Login("erin", ""); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	if err := auth.SetAdmin("erin", true); err != nil {
		t.Fatalf("set admin failed: %v", err)
	}
	result, err := auth.Login("erin", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !result.IsAdmin {
		t.Error("token should carry the admin flag")
	}

	if err := auth.DeleteUser("erin"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := auth.DeleteUser("erin"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second delete: err = %v, want ErrUserNotFound", err)
	}
}
