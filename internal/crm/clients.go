package crm

import (
	"encoding/json"
	"net/http"

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

// requireAgent pulls the agent id out of the request context.
func requireAgent(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// CreateClientHandler adds a contact to the agent's book.
func CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req struct {
		Name  string   `json:"name"`
		Phone string   `json:"phone"`
		Email string   `json:"email"`
		Tags  []string `json:"tags"`
		Notes string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	client := Client{
		ID:      uuid.New(),
		AgentID: agentID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Tags:    req.Tags,
		Notes:   req.Notes,
	}

	if err := db.DB.Create(&client).Error; err != nil {
		http.Error(w, "Failed to create client: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

// ListClientsHandler returns the agent's contacts, optionally filtered by tag
// or a name substring.
func ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	query := db.DB.Model(&Client{}).Where("agent_id = ?", agentID)
	if tag := r.URL.Query().Get("tag"); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}
	if name := r.URL.Query().Get("q"); name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}

	var clients []Client
	if err := query.Order("name ASC").Find(&clients).Error; err != nil {
		http.Error(w, "Failed to fetch clients: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, clients)
}

// GetClientHandler returns a single contact. Other agents' contacts are 404.
func GetClientHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var client Client
	if err := db.DB.First(&client, "id = ? AND agent_id = ?", id, agentID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	writeJSON(w, client)
}

// UpdateClientHandler updates contact fields.
func UpdateClientHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var client Client
	if err := db.DB.First(&client, "id = ? AND agent_id = ?", id, agentID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	var req struct {
		Name  *string  `json:"name,omitempty"`
		Phone *string  `json:"phone,omitempty"`
		Email *string  `json:"email,omitempty"`
		Tags  []string `json:"tags,omitempty"`
		Notes *string  `json:"notes,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			http.Error(w, "name cannot be empty", http.StatusBadRequest)
			return
		}
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := db.DB.Model(&client).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update client: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}

// DeleteClientHandler removes a contact.
func DeleteClientHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	res := db.DB.Where("id = ? AND agent_id = ?", id, agentID).Delete(&Client{})
	if res.Error != nil {
		http.Error(w, "Failed to delete client: "+res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
