package auth

import (
	"testing"
	"time"

	"soultrack/followup/internal/constants"
)

func TestTokenVerifier_RoundTrip(t *testing.T) {
	secret := []byte("shared")
	token, err := SignToken(secret, "user-1", "marie@example.org", time.Hour)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	id, err := NewTokenVerifier(secret).Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if id.UserID != "user-1" || id.Email != "marie@example.org" {
		t.Errorf("Unexpected identity: %+v", id)
	}
}

func TestTokenVerifier_RejectsExpiredAndForeign(t *testing.T) {
	token, err := SignToken([]byte("shared"), "user-1", "", time.Minute)
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	v := NewTokenVerifier([]byte("shared"))
	v.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := v.Verify(token); err == nil {
		t.Error("Expected expired token to be rejected")
	}

	if _, err := NewTokenVerifier([]byte("other")).Verify(token); err == nil {
		t.Error("Expected token signed with another secret to be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc.def"); err != nil || tok != "abc.def" {
		t.Errorf("Expected abc.def, got %q (err %v)", tok, err)
	}
	for _, h := range []string{"", "Bearer ", "Basic abc"} {
		if _, err := BearerToken(h); err == nil {
			t.Errorf("Expected error for header %q", h)
		}
	}
}

func TestSession_Roles(t *testing.T) {
	s := &Session{Roles: []constants.Role{constants.RoleConseiller}}
	if !s.HasAnyRole(constants.RoleAdmin, constants.RoleConseiller) {
		t.Error("Expected session to match Conseiller")
	}
	if s.IsAdmin() {
		t.Error("Expected non-admin session")
	}

	var nilSession *Session
	if nilSession.HasRole(constants.RoleAdmin) {
		t.Error("Expected nil session to carry no role")
	}
}
