package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Client is a contact in an agent's book. Every CRM record is scoped to the
// agent that created it.
type Client struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AgentID string         `gorm:"not null;index" json:"agent_id"`
	Name    string         `gorm:"not null" json:"name"`
	Phone   string         `json:"phone"`
	Email   string         `json:"email"`
	Tags    pq.StringArray `gorm:"type:text[]" json:"tags"`
	Notes   string         `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "crm.clients"
}

type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AgentID    string     `gorm:"not null;index" json:"agent_id"`
	ClientID   *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	PropertyID *uuid.UUID `gorm:"type:uuid;index" json:"property_id,omitempty"`
	Title      string     `gorm:"not null" json:"title"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	Status     string     `gorm:"default:'open';index" json:"status"` // open, done
	DoneAt     *time.Time `json:"done_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "crm.tasks"
}

// Deal tracks a client's progress against a property through the pipeline.
type Deal struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AgentID       string     `gorm:"not null;index" json:"agent_id"`
	ClientID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	PropertyID    *uuid.UUID `gorm:"type:uuid;index" json:"property_id,omitempty"`
	Stage         string     `gorm:"default:'lead';index" json:"stage"` // lead, viewing, negotiation, contract, closed, lost
	Amount        int64      `json:"amount"`
	CommissionPct float64    `json:"commission_pct"`
	Notes         string     `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Deal) TableName() string {
	return "crm.deals"
}

var dealStages = map[string]struct{}{
	"lead":        {},
	"viewing":     {},
	"negotiation": {},
	"contract":    {},
	"closed":      {},
	"lost":        {},
}

// ValidStage reports whether s is one of the pipeline stages.
func ValidStage(s string) bool {
	_, ok := dealStages[s]
	return ok
}
