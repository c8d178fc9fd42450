package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-study/internal/api/middleware"
	"github.com/phrazzld/scry-study/internal/redact"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	Study  study.StudyService
	Cards  service.CardService
	Logger *slog.Logger

	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Ready reports whether backing stores are reachable. A nil Ready
	// makes /health always answer OK.
	Ready func(ctx context.Context) error
}

// NewRouter builds the application router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace(log))

	studyHandler := NewStudyHandler(cfg.Study, log)
	cardHandler := NewCardHandler(cfg.Cards, cfg.Study, log)
	deckHandler := NewDeckHandler(cfg.Cards, cfg.Study, log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/{id}", deckHandler.GetDeck)
			r.Get("/{id}/cards", deckHandler.ListCards)
			r.Get("/{id}/subdecks", deckHandler.ListSubdecks)
			r.Get("/{id}/stats", deckHandler.GetDeckStats)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Get("/{id}", cardHandler.GetCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
			r.Get("/{id}/stats", cardHandler.GetCardStats)
			r.Get("/{id}/reviews", cardHandler.GetCardReviews)
			r.Post("/{id}/reset", cardHandler.ResetCard)
			r.Post("/{id}/postpone", cardHandler.PostponeCard)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", studyHandler.StartSession)
			r.Get("/", studyHandler.ListSessions)

			// static segments win over {id} in chi
			r.Get("/current", studyHandler.GetCurrentSession)
			r.Get("/current/next", studyHandler.GetNextCard)
			r.Post("/current/reviews", studyHandler.RecordReview)
			r.Post("/current/skips", studyHandler.SkipCard)

			r.Get("/{id}", studyHandler.GetSession)
			r.Get("/{id}/stats", studyHandler.GetSessionStats)
			r.Get("/{id}/cards", studyHandler.GetSessionCards)
			r.Post("/{id}/end", studyHandler.EndSession)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(r.Context()); err != nil {
				log.Error("health check failed", slog.String("error", redact.Error(err)))
				http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return r
}
