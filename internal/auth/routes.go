package auth

import (
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/code/request", RequestCodeHandler)
	r.Post("/code/verify", VerifyCodeHandler)
	r.Post("/pin/setup", PinSetupHandler)
	r.Post("/pin/verify", PinVerifyHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(Issuer))

		r.Post("/logout", LogoutHandler)
		r.Get("/me", MeHandler)
		r.Patch("/me", UpdateMeHandler)

		// Admin-only account review
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware())
			r.Get("/users", ListUsersHandler)
			r.Post("/users/{id}/approve", ApproveUserHandler)
			r.Post("/users/{id}/reject", RejectUserHandler)
		})
	})

	return r
}
