package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/crm"
	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/geo"
	"github.com/BrokerNest/BN-Backend/internal/listings"
	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/BrokerNest/BN-Backend/internal/webhooks"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	listings.Init()
	crm.Init()
	webhooks.Init()
	geoHandler := geo.Setup()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/listings", listings.SetupRoutes())
	r.Mount("/crm", crm.SetupRoutes())
	r.Mount("/geo", geo.SetupRoutes(geoHandler))
	r.Mount("/webhooks", webhooks.SetupRoutes())

	fmt.Printf("Server listening on port :%s...\n", port)

	http.ListenAndServe("0.0.0.0:"+port, r)
}
