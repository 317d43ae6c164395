package domain

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	valid := []string{"Abcdef1!", "Str0ng#Password", "X9$aaaaa"}
	for _, p := range valid {
		if err := ValidatePassword(p); err != nil {
			t.Fatalf("expected %q to pass policy, got %v", p, err)
		}
	}

	weak := map[string]string{
		"Ab1!":      "too short",
		"abcdefg1!": "no uppercase",
		"Abcdefgh!": "no digit",
		"Abcdefgh1": "no symbol",
		"":          "empty",
	}
	for p, why := range weak {
		err := ValidatePassword(p)
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("expected ErrWeakPassword for %q (%s), got %v", p, why, err)
		}
	}
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleClient, RoleArtisan, RoleAdmin} {
		if !ValidRole(role) {
			t.Fatalf("expected %q to be a valid role", role)
		}
	}
	for _, role := range []string{"", "ROLE_SUPERUSER", "client"} {
		if ValidRole(role) {
			t.Fatalf("expected %q to be rejected", role)
		}
	}
}
