package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"splitbook/internal/apperr"
	"splitbook/internal/models"
	"splitbook/internal/storage/sqlite"
)

func newTestAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewPasswordAuthenticator(store)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	authenticator := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := authenticator.Register(ctx, "alice", "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("registered user has no ID")
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plaintext")
	}

	t.Run("valid credentials", func(t *testing.T) {
		got, err := authenticator.Authenticate(ctx, "alice", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("user ID = %s, want %s", got.ID, user.ID)
		}
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, wrongPass := authenticator.Authenticate(ctx, "alice", "wrong")
		_, unknownUser := authenticator.Authenticate(ctx, "nobody", "correct horse")
		for _, err := range []error{wrongPass, unknownUser} {
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, err := authenticator.Register(ctx, "alice", "other@example.com", "another pass")
		if !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	authenticator := newTestAuthenticator(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"empty username", "  ", "a@example.com", "long enough"},
		{"bad email", "alice", "not-an-email", "long enough"},
		{"short password", "alice", "a@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authenticator.Register(ctx, tt.username, tt.email, tt.password)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key-for-jwt-tests", time.Hour)
	user := &models.User{ID: "user-1", Username: "alice"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != user.Username {
		t.Errorf("claims = %s/%s, want %s/%s", claims.UserID, claims.Username, user.ID, user.Username)
	}

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTManager("a-different-secret-entirely", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key-for-jwt-tests", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := expired.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
