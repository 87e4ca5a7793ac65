package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"gorm.io/gorm/clause"
)

// Lead is a property inquiry submitted through the marketing site's contact
// form. Rows are keyed by the form provider's submission id so redelivered
// webhooks are no-ops.
type Lead struct {
	SubmissionID string    `gorm:"primaryKey" json:"submission_id"`
	Payload      string    `gorm:"type:jsonb" json:"payload"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Message      string    `json:"message"`
	ListingRef   string    `json:"listing_ref"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Lead) TableName() string { return "inbox.leads" }

// LeadFormWebhook receives signed form submissions from the marketing site.
func LeadFormWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "payload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}
	defer r.Body.Close()

	sig := r.Header.Get("X-Form-Signature")
	sid := r.Header.Get("X-Form-Submission-Id")
	if sid == "" {
		http.Error(w, "missing submission id", http.StatusBadRequest)
		return
	}

	secret := os.Getenv("LEAD_WEBHOOK_SECRET")
	if secret == "" {
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}
	if !verifySignature(sig, sid, raw, secret) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	lead := Lead{
		SubmissionID: sid,
		Payload:      string(raw),
		Name:         str(m, "Name", "name"),
		Email:        str(m, "Email", "email"),
		Phone:        str(m, "Phone", "phone"),
		Message:      str(m, "Message", "message", "about"),
		ListingRef:   str(m, "Listing", "listing_ref", "listing_id"),
	}

	if err := db.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&lead).Error; err != nil {
		http.Error(w, "db insert failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"ok":true}`))
}

func verifySignature(sig, sid string, raw []byte, secret string) bool {
	if !strings.HasPrefix(sig, "sha256=") {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	mac.Write([]byte(sid))
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
