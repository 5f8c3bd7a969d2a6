// ABOUTME: Tests for JWT claim inspection
// ABOUTME: Uses locally signed tokens; signatures are never checked

package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{"jwt with exp", signedToken(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()}), true},
		{"jwt without exp", signedToken(t, jwt.MapClaims{"sub": "alice"}), false},
		{"opaque token", "tok123", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := TokenExpiry(tc.token)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && !got.Equal(exp) {
				t.Errorf("expected %v, got %v", exp, got)
			}
		})
	}
}

func TestTokenExpiry_ExpiredTokenStillReported(t *testing.T) {
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"exp": past.Unix()})

	got, ok := TokenExpiry(token)
	if !ok || !got.Equal(past) {
		t.Errorf("expected %v, got %v ok=%v", past, got, ok)
	}
}

func TestTokenSubject(t *testing.T) {
	if sub, ok := TokenSubject(signedToken(t, jwt.MapClaims{"sub": "alice"})); !ok || sub != "alice" {
		t.Errorf("expected alice, got %q ok=%v", sub, ok)
	}
	if _, ok := TokenSubject("tok123"); ok {
		t.Error("expected opaque token to have no subject")
	}
}
