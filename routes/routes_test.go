package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/mini-tournament/brackets"
	"github.com/Dosada05/mini-tournament/handlers"
	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

type stateOnlyService struct {
	services.TournamentService
}

func (stateOnlyService) GetState(context.Context, int) (*models.TournamentState, error) {
	return models.NewTournamentState(models.Format16Mini, 4), nil
}

func newRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := stateOnlyService{}
	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Tournament: handlers.NewTournamentHandler(svc),
		Pair:       handlers.NewPairHandler(svc),
		Match:      handlers.NewMatchHandler(svc),
		WebSocket:  handlers.NewWebSocketHandler(brackets.NewHub(logger), nil, logger),
		Health:     handlers.NewHealthHandler(nil),
	}, Options{JWTSecret: "secret"})
	return router
}

func TestRoutes(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"openapi document is public", http.MethodGet, "/swagger/doc.json", "", http.StatusOK},
		{"state needs a token", http.MethodGet, "/tournament", "", http.StatusUnauthorized},
		{"state with token", http.MethodGet, "/tournament", token, http.StatusOK},
		{"archives need a token", http.MethodGet, "/archives", "", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/nope", token, http.StatusNotFound},
	}
	router := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/tournament", nil)
	req.Header.Set("Origin", "https://club.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("expected CORS headers on a preflight, got %v", rr.Header())
	}
}
