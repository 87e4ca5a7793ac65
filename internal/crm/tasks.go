package crm

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateTaskHandler creates a task, optionally tied to a client or property.
func CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	var req struct {
		Title      string     `json:"title"`
		ClientID   *uuid.UUID `json:"client_id,omitempty"`
		PropertyID *uuid.UUID `json:"property_id,omitempty"`
		DueAt      *time.Time `json:"due_at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	task := Task{
		ID:         uuid.New(),
		AgentID:    agentID,
		ClientID:   req.ClientID,
		PropertyID: req.PropertyID,
		Title:      req.Title,
		DueAt:      req.DueAt,
		Status:     "open",
	}

	if err := db.DB.Create(&task).Error; err != nil {
		http.Error(w, "Failed to create task: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

// ListTasksHandler returns the agent's tasks with optional status and client
// filters. ?due=overdue narrows to open tasks past their due date.
func ListTasksHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	query := db.DB.Model(&Task{}).Where("agent_id = ?", agentID)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if r.URL.Query().Get("due") == "overdue" {
		query = query.Where("status = ? AND due_at < ?", "open", time.Now())
	}

	var tasks []Task
	if err := query.Order("due_at ASC NULLS LAST, created_at DESC").Find(&tasks).Error; err != nil {
		http.Error(w, "Failed to fetch tasks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, tasks)
}

// CompleteTaskHandler marks a task done. Completing a done task is a no-op,
// not an error.
func CompleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	var task Task
	if err := db.DB.First(&task, "id = ? AND agent_id = ?", id, agentID).Error; err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	if task.Status != "done" {
		now := time.Now()
		task.Status = "done"
		task.DoneAt = &now
		if err := db.DB.Save(&task).Error; err != nil {
			http.Error(w, "Failed to complete task: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, task)
}

// DeleteTaskHandler removes a task.
func DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	agentID, ok := requireAgent(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	res := db.DB.Where("id = ? AND agent_id = ?", id, agentID).Delete(&Task{})
	if res.Error != nil {
		http.Error(w, "Failed to delete task: "+res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}
