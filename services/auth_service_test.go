package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	service := NewAuthService(users)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{
		FirstName: "Alice",
		Email:     "Alice@Example.com",
		Password:  "correct horse",
		Role:      models.RoleManager,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash must not be returned")
	}

	logged, err := service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, logged.ID)
	}
	if logged.PasswordHash != "" {
		t.Fatal("password hash must not be returned on login")
	}
}

func TestRegisterDefaultsToPlayerRole(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Bob",
		Email:     "bob@example.com",
		Password:  "long enough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != models.RolePlayer {
		t.Fatalf("expected player role, got %s", user.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{FirstName: "Bob", Email: "not-an-email", Password: "long enough"})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for bad email, got %v", err)
	}

	_, err = service.Register(ctx, RegisterInput{FirstName: "Bob", Email: "bob@example.com", Password: "short"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	_, err = service.Register(ctx, RegisterInput{FirstName: "Bob", Email: "bob@example.com", Password: "long enough", Role: "admin"})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for unknown role, got %v", err)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()
	input := RegisterInput{FirstName: "Alice", Email: "alice@example.com", Password: "correct horse"}

	if _, err := service.Register(ctx, input); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := service.Register(ctx, input)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	if _, err := service.Register(ctx, RegisterInput{FirstName: "Alice", Email: "alice@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := service.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong password"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
