package listings

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// findOwnListing loads a listing scoped to the requesting agent. Listings
// belonging to other agents look like 404, not 403.
func findOwnListing(r *http.Request) (*Property, int, string) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return nil, http.StatusUnauthorized, "Unauthorized"
	}

	id := chi.URLParam(r, "id")
	var listing Property
	if err := db.DB.First(&listing, "id = ? AND agent_id = ?", id, userID).Error; err != nil {
		return nil, http.StatusNotFound, "Listing not found"
	}
	return &listing, 0, ""
}

// CreateListingHandler creates a draft listing for the current agent.
func CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Address     string   `json:"address"`
		City        string   `json:"city"`
		State       string   `json:"state"`
		Zip         string   `json:"zip"`
		Lat         float64  `json:"lat"`
		Lng         float64  `json:"lng"`
		Price       int64    `json:"price"`
		Rooms       int      `json:"rooms"`
		AreaSqm     float64  `json:"area_sqm"`
		Photos      []string `json:"photos"`
		Features    []string `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Address == "" || req.Price <= 0 {
		http.Error(w, "title, address, and a positive price are required", http.StatusBadRequest)
		return
	}

	listing := Property{
		ID:          uuid.New(),
		AgentID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Zip:         req.Zip,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Price:       req.Price,
		Rooms:       req.Rooms,
		AreaSqm:     req.AreaSqm,
		Photos:      req.Photos,
		Features:    req.Features,
		Status:      "draft",
	}

	if err := db.DB.Create(&listing).Error; err != nil {
		http.Error(w, "Failed to create listing: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

// ListMineHandler returns the current agent's listings with optional status
// filtering.
func ListMineHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := db.DB.Model(&Property{}).Where("agent_id = ?", userID)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var listings []Property
	if err := query.Order("created_at DESC").Find(&listings).Error; err != nil {
		http.Error(w, "Failed to fetch listings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, listings)
}

// GetListingHandler returns one of the current agent's listings.
func GetListingHandler(w http.ResponseWriter, r *http.Request) {
	listing, code, msg := findOwnListing(r)
	if listing == nil {
		http.Error(w, msg, code)
		return
	}
	writeJSON(w, listing)
}

// UpdateListingHandler updates a draft listing.
func UpdateListingHandler(w http.ResponseWriter, r *http.Request) {
	listing, code, msg := findOwnListing(r)
	if listing == nil {
		http.Error(w, msg, code)
		return
	}

	if listing.Status != "draft" {
		http.Error(w, "Cannot update listing after submission", http.StatusBadRequest)
		return
	}

	var req struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Address     *string  `json:"address,omitempty"`
		City        *string  `json:"city,omitempty"`
		State       *string  `json:"state,omitempty"`
		Zip         *string  `json:"zip,omitempty"`
		Price       *int64   `json:"price,omitempty"`
		Rooms       *int     `json:"rooms,omitempty"`
		AreaSqm     *float64 `json:"area_sqm,omitempty"`
		Photos      []string `json:"photos,omitempty"`
		Features    []string `json:"features,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Zip != nil {
		updates["zip"] = *req.Zip
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			http.Error(w, "price must be positive", http.StatusBadRequest)
			return
		}
		updates["price"] = *req.Price
	}
	if req.Rooms != nil {
		updates["rooms"] = *req.Rooms
	}
	if req.AreaSqm != nil {
		updates["area_sqm"] = *req.AreaSqm
	}
	if req.Photos != nil {
		updates["photos"] = pq.StringArray(req.Photos)
	}
	if req.Features != nil {
		updates["features"] = pq.StringArray(req.Features)
	}

	if err := db.DB.Model(listing).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update listing: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// ArchiveListingHandler takes a listing off the market.
func ArchiveListingHandler(w http.ResponseWriter, r *http.Request) {
	listing, code, msg := findOwnListing(r)
	if listing == nil {
		http.Error(w, msg, code)
		return
	}

	if listing.Status == "archived" {
		http.Error(w, "Listing is already archived", http.StatusBadRequest)
		return
	}

	listing.Status = "archived"
	if err := db.DB.Save(listing).Error; err != nil {
		http.Error(w, "Failed to archive listing: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "archived"})
}

// SubmitListingHandler moves a draft into pending_consent and mints the
// owner's consent token. The frontend delivers the consent link out of band.
func SubmitListingHandler(w http.ResponseWriter, r *http.Request) {
	listing, code, msg := findOwnListing(r)
	if listing == nil {
		http.Error(w, msg, code)
		return
	}

	if listing.Status != "draft" {
		http.Error(w, "Listing is not in draft status", http.StatusBadRequest)
		return
	}

	var req struct {
		OwnerName  string `json:"owner_name"`
		OwnerPhone string `json:"owner_phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.OwnerName == "" || req.OwnerPhone == "" {
		http.Error(w, "owner_name and owner_phone are required", http.StatusBadRequest)
		return
	}

	consentToken := uuid.NewString()
	listing.OwnerName = req.OwnerName
	listing.OwnerPhone = req.OwnerPhone
	listing.ConsentToken = &consentToken
	listing.ApprovalStatus = "pending"
	listing.ResponseAt = nil
	listing.Status = "pending_consent"

	if err := db.DB.Save(listing).Error; err != nil {
		http.Error(w, "Failed to submit listing: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"status":        listing.Status,
		"consent_token": consentToken,
	})
}

// GetConsentHandler returns a redacted listing summary for the owner-facing
// consent page. No authentication; the token itself is the capability.
func GetConsentHandler(w http.ResponseWriter, r *http.Request) {
	tokenParam := chi.URLParam(r, "token")

	var listing Property
	if err := db.DB.First(&listing, "consent_token = ?", tokenParam).Error; err != nil {
		writeError(w, http.StatusNotFound, map[string]any{"message": "Consent link invalid"})
		return
	}

	writeJSON(w, map[string]any{
		"title":           listing.Title,
		"address":         listing.Address,
		"city":            listing.City,
		"price":           listing.Price,
		"owner_name":      listing.OwnerName,
		"approval_status": listing.ApprovalStatus,
	})
}

func writeError(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// consentAction builds the handler for one decision endpoint. The decision is
// implied by which route the owner's link hits, not by the request body.
func consentAction(decision, verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenParam := chi.URLParam(r, "token")

		_, err := ApplyConsent(tokenParam, decision)
		if err != nil {
			var processed *AlreadyProcessedError
			switch {
			case errors.Is(err, ErrConsentNotFound):
				writeError(w, http.StatusNotFound, map[string]any{"message": "Consent link invalid"})
			case errors.As(err, &processed):
				writeError(w, http.StatusConflict, map[string]any{
					"message": "Consent already processed",
					"action":  processed.Action,
				})
			default:
				log.Printf("[listings] consent %s failed for token %s: %v", decision, tokenParam, err)
				writeError(w, http.StatusInternalServerError, map[string]any{"message": "Something went wrong"})
			}
			return
		}

		writeJSON(w, map[string]any{"success": true, "action": verb})
	}
}

// ApproveConsentHandler is the owner's approve link target.
var ApproveConsentHandler = consentAction("approved", "approve")

// RejectConsentHandler is the owner's reject link target.
var RejectConsentHandler = consentAction("rejected", "reject")

// SearchHandler is the public search over active listings.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Property{}).Where("status = ?", "active")

	if city := r.URL.Query().Get("city"); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if min := r.URL.Query().Get("min_price"); min != "" {
		v, err := strconv.ParseInt(min, 10, 64)
		if err != nil {
			http.Error(w, "min_price must be an integer", http.StatusBadRequest)
			return
		}
		query = query.Where("price >= ?", v)
	}
	if max := r.URL.Query().Get("max_price"); max != "" {
		v, err := strconv.ParseInt(max, 10, 64)
		if err != nil {
			http.Error(w, "max_price must be an integer", http.StatusBadRequest)
			return
		}
		query = query.Where("price <= ?", v)
	}
	if rooms := r.URL.Query().Get("rooms"); rooms != "" {
		v, err := strconv.Atoi(rooms)
		if err != nil {
			http.Error(w, "rooms must be an integer", http.StatusBadRequest)
			return
		}
		query = query.Where("rooms >= ?", v)
	}

	var results []Property
	if err := query.Order("created_at DESC").Limit(100).Find(&results).Error; err != nil {
		http.Error(w, "Failed to search listings: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, results)
}

// ReviewQueueHandler returns consented listings awaiting admin review.
func ReviewQueueHandler(w http.ResponseWriter, r *http.Request) {
	var listings []Property
	if err := db.DB.Where("status = ?", "pending_review").
		Order("updated_at ASC").
		Find(&listings).Error; err != nil {
		http.Error(w, "Failed to fetch review queue: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, listings)
}

// ApproveListingHandler publishes a reviewed listing (admin only).
func ApproveListingHandler(w http.ResponseWriter, r *http.Request) {
	reviewListing(w, r, "approved", "active", "")
}

// RejectListingHandler rejects a reviewed listing with a reason (admin only).
func RejectListingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	reviewListing(w, r, "rejected", "rejected", req.Reason)
}

func reviewListing(w http.ResponseWriter, r *http.Request, action, newStatus, reason string) {
	reviewerID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	tx := db.DB.Begin()
	if tx.Error != nil {
		http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
		return
	}

	var listing Property
	if err := tx.First(&listing, "id = ?", id).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}

	if listing.Status != "pending_review" {
		tx.Rollback()
		http.Error(w, "Listing is not in review status", http.StatusBadRequest)
		return
	}

	listing.Status = newStatus
	listing.RejectReason = reason

	reviewLog := ReviewLog{
		ID:         uuid.New(),
		PropertyID: listing.ID,
		ReviewerID: reviewerID,
		Action:     action,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(&reviewLog).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to log review: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tx.Save(&listing).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Failed to save listing: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Failed to commit: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": newStatus})
}
