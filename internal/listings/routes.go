package listings

import (
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/search", SearchHandler)

	// Owner-facing consent endpoints. The token is the only credential; the
	// decision is implied by the endpoint variant.
	r.Get("/consent/{token}", GetConsentHandler)
	r.Post("/consent/{token}/approve", ApproveConsentHandler)
	r.Post("/consent/{token}/reject", RejectConsentHandler)

	// Agent routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.Issuer))

		r.Post("/", CreateListingHandler)
		r.Get("/", ListMineHandler)
		r.Get("/{id}", GetListingHandler)
		r.Put("/{id}", UpdateListingHandler)
		r.Post("/{id}/submit", SubmitListingHandler)
		r.Post("/{id}/archive", ArchiveListingHandler)

		// Admin-only listing review
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware())
			r.Get("/review-queue", ReviewQueueHandler)
			r.Post("/{id}/approve", ApproveListingHandler)
			r.Post("/{id}/reject", RejectListingHandler)
		})
	})

	return r
}
