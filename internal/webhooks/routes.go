package webhooks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Authenticated by HMAC signature, not by session.
	r.Post("/lead", LeadFormWebhook)

	return r
}
