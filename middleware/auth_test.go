package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthenticatePassesClaimsThrough(t *testing.T) {
	var gotUserID int
	var gotRole string

	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		if err != nil {
			t.Fatalf("GetUserIDFromContext: %v", err)
		}
		role, err := GetUserRoleFromContext(r.Context())
		if err != nil {
			t.Fatalf("GetUserRoleFromContext: %v", err)
		}
		gotUserID = userID
		gotRole = string(role)
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "manager",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != 42 || gotRole != "manager" {
		t.Fatalf("unexpected claims: user %d role %s", gotUserID, gotRole)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"missing token", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }},
		{"wrong secret", func(r *http.Request) {
			token := signToken(t, "other-secret", jwt.MapClaims{"user_id": 42, "role": "player", "exp": time.Now().Add(time.Hour).Unix()})
			r.Header.Set("Authorization", "Bearer "+token)
		}},
		{"expired", func(r *http.Request) {
			token := signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "role": "player", "exp": time.Now().Add(-time.Hour).Unix()})
			r.Header.Set("Authorization", "Bearer "+token)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthenticateAcceptsQueryToken(t *testing.T) {
	handler := Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 42,
		"role":    "player",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorizeRoles(t *testing.T) {
	chain := Authenticate(testSecret)(Authorize("organizer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	request := func(role string) int {
		token := signToken(t, testSecret, jwt.MapClaims{
			"user_id": 42,
			"role":    role,
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request("organizer"); code != http.StatusOK {
		t.Fatalf("organizer: expected 200, got %d", code)
	}
	if code := request("player"); code != http.StatusForbidden {
		t.Fatalf("player: expected 403, got %d", code)
	}
}
