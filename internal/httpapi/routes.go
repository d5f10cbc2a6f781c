package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/czrobotics/scorehost/internal/ws"
)

func SetupRoutes(h *Handlers, wsDeps ws.Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(wsDeps))

	r.Get("/matches", h.Matches)
	r.Post("/tournament/fetch", h.Fetch)
	r.Post("/tournament/state", h.ChangeState)
	r.Post("/tournament/reset", h.Reset)

	r.Get("/oauth/login", h.OAuthLogin)
	r.Get("/oauth/callback", h.OAuthCallback)

	return r
}
