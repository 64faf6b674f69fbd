package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/mini-tournament/docs"
	"github.com/Dosada05/mini-tournament/handlers"
	"github.com/Dosada05/mini-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Pair       *handlers.PairHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Total-Returned"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Get("/health", h.Health.Health)
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.SwaggerJSON)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// The websocket route stays outside the timeout middleware.
	router.With(authenticate).Get("/ws/tournament", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(chiMiddleware.Timeout(timeout))

		r.Route("/tournament", func(r chi.Router) {
			r.Get("/", h.Tournament.GetStateHandler)
			r.Put("/format", h.Tournament.SetFormatHandler)
			r.Put("/courts", h.Tournament.SetCourtsHandler)

			r.Post("/players", h.Pair.AddPlayerHandler)
			r.Route("/pairs", func(r chi.Router) {
				r.Post("/", h.Pair.RegisterPairHandler)
				r.Patch("/{pairID}/reserve", h.Pair.MarkReserveHandler)
				r.Delete("/{pairID}", h.Pair.DissolvePairHandler)
				r.Post("/{pairID}/substitute", h.Pair.SubstituteHandler)
			})

			r.Post("/start", h.Tournament.StartHandler)
			r.Post("/advance", h.Tournament.AdvanceHandler)
			r.Post("/reset", h.Tournament.ResetHandler)
			r.Post("/archive", h.Tournament.ArchiveHandler)

			r.Post("/matches/{matchID}/score", h.Match.RecordScoreHandler)

			r.Get("/groups/{groupID}/standings", h.Tournament.StandingsHandler)
			r.Get("/rounds/{round}/matches", h.Tournament.RoundMatchesHandler)
			r.Get("/champions", h.Tournament.ChampionsHandler)
		})

		r.Get("/archives", h.Tournament.ListArchivesHandler)
		r.Get("/archives/{archiveID}", h.Tournament.GetArchiveHandler)
	})
}
