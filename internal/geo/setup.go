package geo

import (
	"log"
	"time"
)

const cacheTTL = 24 * time.Hour

// Setup builds the provider client and its cache. The cache lives on the
// returned handler rather than in package state.
func Setup() *Handler {
	client, err := NewClient()
	if err != nil {
		log.Printf("[geo] WARNING: failed to initialize geocoding client: %v", err)
		client = nil
	}
	if client == nil {
		log.Println("[geo] GOOGLE_MAPS_API_KEY not set — geocoding disabled")
	}

	return NewHandler(client, NewCache(cacheTTL))
}
