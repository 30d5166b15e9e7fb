package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bienesraices/boutique/internal/model"
)

func newUser(gmail, username string) *model.User {
	now := time.Now().UTC().Truncate(time.Second)
	hash := "$2a$10$fakefakefakefakefakefakefakefakefakefakefakefakefakef"
	return &model.User{
		ID:           uuid.New().String(),
		Gmail:        gmail,
		Username:     username,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepositoryCRUD(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	user := newUser("alice@gmail.com", "alice")
	err := repo.Create(user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ByID(user.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.Gmail != "alice@gmail.com" || got.Username != "alice" {
		t.Fatalf("got %q/%q", got.Gmail, got.Username)
	}

	_, err = repo.ByID(uuid.New().String())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ByID unknown: %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryByIdentifier(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	user := newUser("alice@gmail.com", "alice")
	err := repo.Create(user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, identifier := range []string{"alice@gmail.com", "alice"} {
		got, err := repo.ByIdentifier(identifier)
		if err != nil {
			t.Fatalf("ByIdentifier(%q): %v", identifier, err)
		}
		if got.ID != user.ID {
			t.Fatalf("ByIdentifier(%q) returned wrong user", identifier)
		}
	}

	_, err = repo.ByIdentifier("nadie")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ByIdentifier unknown: %v", err)
	}
}

func TestUserRepositoryDuplicates(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	err := repo.Create(newUser("alice@gmail.com", "alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = repo.Create(newUser("alice@gmail.com", "alice2"))
	if !errors.Is(err, ErrDuplicateGmail) {
		t.Fatalf("duplicate gmail: %v, want ErrDuplicateGmail", err)
	}

	err = repo.Create(newUser("other@gmail.com", "alice"))
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate username: %v, want ErrDuplicateUsername", err)
	}
}

func TestUserRepositoryByProviderIdentity(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	user := newUser("dave@gmail.com", "dave")
	provider := "google"
	subject := "g-123"
	user.Provider = &provider
	user.ProviderUserID = &subject
	user.PasswordHash = nil

	err := repo.Create(user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ByProviderIdentity("google", "g-123")
	if err != nil {
		t.Fatalf("ByProviderIdentity: %v", err)
	}
	if got.ID != user.ID {
		t.Fatal("wrong user")
	}
	if got.HasPassword() {
		t.Fatal("oauth user reports a password")
	}

	_, err = repo.ByProviderIdentity("github", "g-123")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("wrong provider: %v", err)
	}
}

// UpdateLockout persists only the counters; profile fields stay intact.
func TestUserRepositoryUpdateLockout(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	user := newUser("alice@gmail.com", "alice")
	err := repo.Create(user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	until := time.Now().UTC().Add(30 * time.Second).Truncate(time.Second)
	user.FailedAttempts = 4
	user.LockedUntil = &until
	user.Gmail = "tampered@gmail.com" // must NOT be written by UpdateLockout

	err = repo.UpdateLockout(user)
	if err != nil {
		t.Fatalf("UpdateLockout: %v", err)
	}

	got, err := repo.ByID(user.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.FailedAttempts != 4 {
		t.Fatalf("failed attempts = %d, want 4", got.FailedAttempts)
	}
	if got.LockedUntil == nil || !got.LockedUntil.Equal(until) {
		t.Fatalf("locked until = %v, want %v", got.LockedUntil, until)
	}
	if got.Gmail != "alice@gmail.com" {
		t.Fatalf("UpdateLockout clobbered gmail: %q", got.Gmail)
	}
}
