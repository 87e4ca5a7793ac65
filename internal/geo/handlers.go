package geo

import (
	"encoding/json"
	"net/http"
)

// Handler serves geocoding requests through an injected provider client and
// cache.
type Handler struct {
	client *Client
	cache  *Cache
}

func NewHandler(client *Client, cache *Cache) *Handler {
	return &Handler{client: client, cache: cache}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GeocodeHandler resolves ?address= into structured location data, consulting
// the cache first.
func (h *Handler) GeocodeHandler(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		http.Error(w, "Geocoding provider not configured", http.StatusServiceUnavailable)
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "address is required", http.StatusBadRequest)
		return
	}

	key := "geocode:" + NormalizeAddress(address)
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, cached)
		return
	}

	result, err := h.client.Geocode(r.Context(), address)
	if err != nil {
		http.Error(w, "Geocoding failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.cache.Set(key, result)
	writeJSON(w, result)
}

// AutocompleteHandler returns address suggestions for ?input=.
func (h *Handler) AutocompleteHandler(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		http.Error(w, "Geocoding provider not configured", http.StatusServiceUnavailable)
		return
	}

	input := r.URL.Query().Get("input")
	if len(input) < 3 {
		http.Error(w, "input must be at least 3 characters", http.StatusBadRequest)
		return
	}

	key := "autocomplete:" + NormalizeAddress(input)
	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, cached)
		return
	}

	predictions, err := h.client.Autocomplete(r.Context(), input)
	if err != nil {
		http.Error(w, "Autocomplete failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.cache.Set(key, predictions)
	writeJSON(w, predictions)
}
