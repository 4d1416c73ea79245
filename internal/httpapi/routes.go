package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jtaylor-dev/avalon-backend/internal/session"
	"github.com/jtaylor-dev/avalon-backend/internal/timer"
	"github.com/jtaylor-dev/avalon-backend/internal/ws"
)

// SetupRoutes builds the full request surface: roster and game
// lifecycle, vote rounds, the shared countdown, and the websocket push
// channel.
func SetupRoutes(s *session.Session, c *timer.Countdown, log *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Post("/join", Join(s))
	r.Post("/quit", Quit(s))
	r.Post("/start", Start(s, log))
	r.Post("/end", End(s, log))
	r.Get("/role", Role(s))
	r.Get("/list", List(s))
	r.Get("/active", Active(s))

	r.Post("/start-vote", StartVote(s))
	r.Get("/current-vote", CurrentVote(s))
	r.Post("/vote", Vote(s))

	r.Post("/start-timer", StartTimer(c))
	r.Post("/toggle-timer", ToggleTimer(c))
	r.Get("/get-time", GetTime(c))

	r.Get("/ws", ws.Handler(s, log))
	r.Get("/healthz", Healthz)

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}
