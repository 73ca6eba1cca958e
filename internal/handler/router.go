/*
Package handler provides the local HTTP API the rendering layer uses to read
converged lobby state and issue commands.

This file defines the main Router, applying logging, CORS, and recovery
middleware before delegating requests to the lobby and session handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"lobbysync/internal/pkg/logx"
	"lobbysync/internal/pkg/resp"
)

// Router sets up the local API routing table (chi.Router) for the daemon.
// The rendering layer runs in a browser shell, so CORS is configured from the
// allowed origins even though all traffic stays on the loopback interface.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "lobbysync",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/lobbies", func(lobbies chi.Router) {
			lobbies.Get("/", HandleListLobbies(deps))
			lobbies.Post("/", HandleCreateLobby(deps))

			lobbies.Route("/{code}", func(one chi.Router) {
				one.Get("/members", HandleListMembers(deps))
				one.Delete("/", HandleDeleteLobby(deps))
				one.Post("/leave", HandleLeaveLobby(deps))
				one.Post("/kick", HandleKickMember(deps))
			})
		})

		api.Route("/session", func(session chi.Router) {
			session.Get("/", HandleGetSession(deps))
			session.Post("/dismiss", HandleDismissSignal(deps))
			session.Post("/route", HandleRouteChanged(deps))
		})
	})

	return r
}
