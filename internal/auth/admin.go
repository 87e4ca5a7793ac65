package auth

import (
	"encoding/json"
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/go-chi/chi/v5"
)

// ListUsersHandler returns user accounts with optional status filtering
// (admin only).
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&User{})

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var users []User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		http.Error(w, "Failed to fetch users: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// ApproveUserHandler approves a pending account (admin only).
func ApproveUserHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var user User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if user.Status != "pending" {
		http.Error(w, "User is not in pending status", http.StatusBadRequest)
		return
	}

	user.Status = "approved"
	if err := db.DB.Save(&user).Error; err != nil {
		http.Error(w, "Failed to approve user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "approved"})
}

// RejectUserHandler rejects a pending account (admin only).
func RejectUserHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var user User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if user.Status != "pending" {
		http.Error(w, "User is not in pending status", http.StatusBadRequest)
		return
	}

	user.Status = "rejected"
	if err := db.DB.Save(&user).Error; err != nil {
		http.Error(w, "Failed to reject user: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "rejected"})
}
