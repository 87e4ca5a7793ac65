package crm

import (
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// All CRM routes require authentication
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(auth.Issuer))

		r.Post("/clients", CreateClientHandler)
		r.Get("/clients", ListClientsHandler)
		r.Get("/clients/{id}", GetClientHandler)
		r.Put("/clients/{id}", UpdateClientHandler)
		r.Delete("/clients/{id}", DeleteClientHandler)

		r.Post("/tasks", CreateTaskHandler)
		r.Get("/tasks", ListTasksHandler)
		r.Post("/tasks/{id}/complete", CompleteTaskHandler)
		r.Delete("/tasks/{id}", DeleteTaskHandler)

		r.Post("/deals", CreateDealHandler)
		r.Get("/deals", ListDealsHandler)
		r.Get("/deals/{id}", GetDealHandler)
		r.Put("/deals/{id}", UpdateDealHandler)
	})

	return r
}
