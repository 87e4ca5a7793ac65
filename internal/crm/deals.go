package crm

import (
	"encoding/json"
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateDealHandler opens a deal for one of the agent's clients.
func CreateDealHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req struct {
		ClientID      uuid.UUID  `json:"client_id"`
		PropertyID    *uuid.UUID `json:"property_id,omitempty"`
		Amount        int64      `json:"amount"`
		CommissionPct float64    `json:"commission_pct"`
		Notes         string     `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClientID == uuid.Nil {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	// The client must belong to the same agent
	var client Client
	if err := db.DB.First(&client, "id = ? AND agent_id = ?", req.ClientID, agentID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	deal := Deal{
		ID:            uuid.New(),
		AgentID:       agentID,
		ClientID:      req.ClientID,
		PropertyID:    req.PropertyID,
		Stage:         "lead",
		Amount:        req.Amount,
		CommissionPct: req.CommissionPct,
		Notes:         req.Notes,
	}

	if err := db.DB.Create(&deal).Error; err != nil {
		http.Error(w, "Failed to create deal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deal)
}

// ListDealsHandler returns the agent's deals with optional stage filtering.
func ListDealsHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	query := db.DB.Model(&Deal{}).Where("agent_id = ?", agentID)
	if stage := r.URL.Query().Get("stage"); stage != "" {
		if !ValidStage(stage) {
			http.Error(w, "unknown stage", http.StatusBadRequest)
			return
		}
		query = query.Where("stage = ?", stage)
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var deals []Deal
	if err := query.Order("updated_at DESC").Find(&deals).Error; err != nil {
		http.Error(w, "Failed to fetch deals: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, deals)
}

// GetDealHandler returns a single deal.
func GetDealHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var deal Deal
	if err := db.DB.First(&deal, "id = ? AND agent_id = ?", id, agentID).Error; err != nil {
		http.Error(w, "Deal not found", http.StatusNotFound)
		return
	}

	writeJSON(w, deal)
}

// UpdateDealHandler updates stage, amount, commission, or notes. Stage values
// are validated against the pipeline.
func UpdateDealHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var deal Deal
	if err := db.DB.First(&deal, "id = ? AND agent_id = ?", id, agentID).Error; err != nil {
		http.Error(w, "Deal not found", http.StatusNotFound)
		return
	}

	var req struct {
		Stage         *string  `json:"stage,omitempty"`
		Amount        *int64   `json:"amount,omitempty"`
		CommissionPct *float64 `json:"commission_pct,omitempty"`
		Notes         *string  `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if req.Stage != nil {
		if !ValidStage(*req.Stage) {
			http.Error(w, "unknown stage", http.StatusBadRequest)
			return
		}
		updates["stage"] = *req.Stage
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.CommissionPct != nil {
		updates["commission_pct"] = *req.CommissionPct
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := db.DB.Model(&deal).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update deal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}
