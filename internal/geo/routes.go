package geo

import (
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Provider quota is billed, so both routes require a logged-in agent.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.Issuer))

		r.Get("/geocode", h.GeocodeHandler)
		r.Get("/autocomplete", h.AutocompleteHandler)
	})

	return r
}
