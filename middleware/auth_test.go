package middleware

import (
	"context"
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

func TestAuthenticate(t *testing.T) {
	valid := signToken(t, testSecret, jwt.MapClaims{"user_id": 12, "exp": time.Now().Add(time.Hour).Unix()})
	stringID := signToken(t, testSecret, jwt.MapClaims{"user_id": "12"})
	expired := signToken(t, testSecret, jwt.MapClaims{"user_id": 12, "exp": time.Now().Add(-time.Hour).Unix()})
	otherKey := signToken(t, "other-secret", jwt.MapClaims{"user_id": 12})
	noUser := signToken(t, testSecret, jwt.MapClaims{"sub": "12"})
	zeroUser := signToken(t, testSecret, jwt.MapClaims{"user_id": 0})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusOK},
		{"lowercase scheme", "bearer " + valid, "", http.StatusOK},
		{"string user id", "Bearer " + stringID, "", http.StatusOK},
		{"query token", "", valid, http.StatusOK},
		{"missing token", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, "", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized},
		{"wrong key", "Bearer " + otherKey, "", http.StatusUnauthorized},
		{"no user claim", "Bearer " + noUser, "", http.StatusUnauthorized},
		{"zero user id", "Bearer " + zeroUser, "", http.StatusUnauthorized},
	}

	var seen int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetOrganizerIDFromContext(r.Context())
		if err != nil {
			t.Errorf("authenticated request without organizer: %v", err)
		}
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(testSecret)(next)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			target := "/tournament"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			if tt.want == http.StatusOK && seen != 12 {
				t.Errorf("expected organizer 12, got %d", seen)
			}
			if tt.want == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Errorf("missing WWW-Authenticate header")
			}
		})
	}
}

func TestGetOrganizerIDFromContext(t *testing.T) {
	if _, err := GetOrganizerIDFromContext(context.Background()); err == nil {
		t.Error("expected an error without claims")
	}
	id, err := GetOrganizerIDFromContext(WithOrganizerID(context.Background(), 9))
	if err != nil || id != 9 {
		t.Errorf("expected organizer 9, got %d (%v)", id, err)
	}

	tests := []struct {
		name   string
		claims jwt.MapClaims
		ok     bool
	}{
		{"float", jwt.MapClaims{"user_id": float64(3)}, true},
		{"fraction", jwt.MapClaims{"user_id": 3.5}, false},
		{"numeric string", jwt.MapClaims{"user_id": "3"}, true},
		{"text", jwt.MapClaims{"user_id": "three"}, false},
		{"negative", jwt.MapClaims{"user_id": float64(-3)}, false},
		{"bool", jwt.MapClaims{"user_id": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := organizerIDFromClaims(tt.claims)
			if (err == nil) != tt.ok {
				t.Errorf("expected ok=%v, got error %v", tt.ok, err)
			}
		})
	}
}
