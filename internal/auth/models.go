package auth

import "time"

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"uniqueIndex;not null" json:"phone"` // E.164
	FullName  string    `json:"full_name"`
	Agency    string    `json:"agency"`
	Role      string    `gorm:"default:'agent'" json:"role"`           // agent, admin
	Status    string    `gorm:"default:'pending';index" json:"status"` // pending, approved, rejected
	HashedPIN string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VerificationCode is a one-time SMS code. Only the hash is stored.
type VerificationCode struct {
	ID         string     `gorm:"primaryKey" json:"-"`
	Phone      string     `gorm:"index;not null" json:"-"`
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"-"`
	ConsumedAt *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"-"`
}

func (User) TableName() string             { return "app_auth.users" }
func (VerificationCode) TableName() string { return "app_auth.verification_codes" }
