package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crewlink-server/services/messaging-api/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestDecode(t *testing.T) {
	v := NewVerifier(&config.Config{AuthSecret: testSecret})

	tokenString := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	subject, err := v.Decode(tokenString)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if subject != "user@example.com" {
		t.Errorf("subject = %q, want user@example.com", subject)
	}
}

func TestDecodeRejects(t *testing.T) {
	v := NewVerifier(&config.Config{AuthSecret: testSecret})

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.MapClaims{
				"sub": "user@example.com",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user@example.com",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "missing expiry",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user@example.com",
			}),
		},
		{
			name: "missing subject",
			token: signToken(t, testSecret, jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{name: "garbage", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Decode(tt.token); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc123", want: "abc123"},
		{header: "bearer abc123", want: "abc123"},
		{header: "Basic abc123", want: ""},
		{header: "abc123", want: ""},
		{header: "", want: ""},
	}
	for _, tt := range tests {
		if got := BearerToken(tt.header); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
