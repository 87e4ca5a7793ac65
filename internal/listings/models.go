package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property is a listing managed by an agent. The consent field group tracks
// the owner's one-time approval of the listing going public.
type Property struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AgentID     string    `gorm:"not null;index" json:"agent_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`

	Address string  `gorm:"not null" json:"address"`
	City    string  `gorm:"index" json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`

	Price    int64          `gorm:"not null" json:"price"`
	Rooms    int            `json:"rooms"`
	AreaSqm  float64        `json:"area_sqm"`
	Photos   pq.StringArray `gorm:"type:text[]" json:"photos"`
	Features pq.StringArray `gorm:"type:text[]" json:"features"`

	// Workflow state
	Status       string `gorm:"default:'draft';index" json:"status"` // draft, pending_consent, pending_review, active, rejected, archived
	RejectReason string `json:"reject_reason,omitempty"`

	// Owner consent. ConsentToken is generated at submission and consumed
	// exactly once via the owner-facing link. ApprovalStatus transitions away
	// from pending exactly once.
	OwnerName      string     `json:"owner_name"`
	OwnerPhone     string     `json:"owner_phone"`
	ConsentToken   *string    `gorm:"uniqueIndex" json:"-"`
	ApprovalStatus string     `gorm:"default:'pending'" json:"approval_status"` // pending, approved, rejected
	ResponseAt     *time.Time `json:"response_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Property) TableName() string {
	return "listings.properties"
}

// ReviewLog tracks admin review actions for audit purposes
type ReviewLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	ReviewerID string    `gorm:"not null" json:"reviewer_id"`
	Action     string    `gorm:"not null" json:"action"` // approved, rejected
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ReviewLog) TableName() string {
	return "listings.review_logs"
}
