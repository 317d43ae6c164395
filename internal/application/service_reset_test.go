package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/proxiserve/auth-service/internal/domain"
)

func requestResetToken(t *testing.T, f *fixture, email string) string {
	t.Helper()
	if err := f.svc.RequestPasswordReset(context.Background(), email, "203.0.113.9"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	account := f.storedAccount(t, strings.ToLower(email))
	if account.ResetToken == nil || account.ResetTokenExpiry == nil {
		t.Fatal("reset request stored no token")
	}
	return *account.ResetToken
}

func TestRequestResetStoresTokenAndNotifies(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "Str0ng!pass", domain.RoleClient)

	token := requestResetToken(t, f, "User@Example.com")

	account := f.storedAccount(t, "user@example.com")
	if want := f.clock.Now().Add(15 * time.Minute); !account.ResetTokenExpiry.Equal(want) {
		t.Fatalf("reset expiry = %v, want %v", account.ResetTokenExpiry, want)
	}

	mail := f.notifier.waitForMail(t)
	if mail.Address != "user@example.com" {
		t.Fatalf("notification sent to %s", mail.Address)
	}
	if !strings.Contains(mail.Body, "?token="+token) {
		t.Fatal("notification body is missing the reset link")
	}
}

func TestRequestResetUnknownIdentityIsSilentNoop(t *testing.T) {
	f := newFixture(t, defaultConfig())

	if err := f.svc.RequestPasswordReset(context.Background(), "ghost@example.com", "203.0.113.9"); err != nil {
		t.Fatalf("unknown identity must get the generic acknowledgment, got %v", err)
	}
	select {
	case mail := <-f.notifier.sent:
		t.Fatalf("unexpected notification to %s", mail.Address)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestResetPasswordHappyPath(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	token := requestResetToken(t, f, "user@example.com")
	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "NewPass1!x",
	}); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	account := f.storedAccount(t, "user@example.com")
	if account.ResetToken != nil || account.ResetTokenExpiry != nil {
		t.Fatal("consumed token must be cleared from the record")
	}

	if _, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "OldPass1!x",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "NewPass1!x",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResetTokenIsSingleUse(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	token := requestResetToken(t, f, "user@example.com")
	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "NewPass1!x",
	}); err != nil {
		t.Fatalf("first consume: %v", err)
	}

	err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "Another1!x",
	})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("replay err = %v, want ErrUnauthenticated", err)
	}
	if account := f.storedAccount(t, "user@example.com"); account.PasswordHash != "hashed:NewPass1!x" {
		t.Fatal("replay must not change the password")
	}
}

func TestResetTokenExpires(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	token := requestResetToken(t, f, "user@example.com")
	f.clock.Advance(16 * time.Minute)

	err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "NewPass1!x",
	})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expired token err = %v, want ErrUnauthenticated", err)
	}
	if account := f.storedAccount(t, "user@example.com"); account.PasswordHash != "hashed:OldPass1!x" {
		t.Fatal("expired token must not change the password")
	}
}

func TestSecondResetRequestInvalidatesFirstToken(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	first := requestResetToken(t, f, "user@example.com")
	f.clock.Advance(time.Minute)
	second := requestResetToken(t, f, "user@example.com")
	if first == second {
		t.Fatal("consecutive requests produced the same token")
	}

	err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       first,
		NewPassword: "NewPass1!x",
	})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("stale token err = %v, want ErrUnauthenticated", err)
	}

	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       second,
		NewPassword: "NewPass1!x",
	}); err != nil {
		t.Fatalf("latest token must remain valid: %v", err)
	}
}

func TestResetRejectsWeakPasswordBeforeConsumingToken(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	token := requestResetToken(t, f, "user@example.com")
	err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "weak",
	})
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}

	// The failed attempt must not burn the token.
	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       token,
		NewPassword: "NewPass1!x",
	}); err != nil {
		t.Fatalf("token must survive a policy failure: %v", err)
	}
}

func TestResetRejectsEmptyAndForgedTokens(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       "   ",
		NewPassword: "NewPass1!x",
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty token err = %v, want ErrInvalidInput", err)
	}

	if err := f.svc.ResetPassword(context.Background(), ResetRequest{
		Token:       "definitely.not.ajwt",
		NewPassword: "NewPass1!x",
	}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("forged token err = %v, want ErrUnauthenticated", err)
	}
}

func TestRequestResetThrottledPerIdentity(t *testing.T) {
	cfg := defaultConfig()
	cfg.ThrottleIdentityThreshold = 3
	f := newFixture(t, cfg)
	f.seedAccount(t, "user@example.com", "OldPass1!x", domain.RoleClient)

	for i := 0; i < 2; i++ {
		if err := f.svc.RequestPasswordReset(context.Background(), "user@example.com", ""); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		f.clock.Advance(time.Second)
	}

	err := f.svc.RequestPasswordReset(context.Background(), "user@example.com", "")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
