package listings

import (
	"errors"
	"fmt"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"gorm.io/gorm"
)

// ErrConsentNotFound means no listing carries the given consent token.
var ErrConsentNotFound = errors.New("consent token not found")

// AlreadyProcessedError means the consent record left pending before this
// request. Action carries the decision that won.
type AlreadyProcessedError struct {
	Action string // approved, rejected
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("consent already processed: %s", e.Action)
}

// ApplyConsent performs the single pending → decision transition for the
// listing addressed by consentToken. decision must be "approved" or
// "rejected".
//
// The transition is a conditional UPDATE on approval_status = 'pending', not a
// read-then-write: two concurrent requests against the same pending token get
// exactly one winner, the loser sees AlreadyProcessedError. Approval moves the
// listing into the admin review queue; rejection ends it.
func ApplyConsent(consentToken, decision string) (*Property, error) {
	if decision != "approved" && decision != "rejected" {
		return nil, fmt.Errorf("invalid decision %q", decision)
	}

	listingStatus := "pending_review"
	if decision == "rejected" {
		listingStatus = "rejected"
	}

	res := db.DB.Model(&Property{}).
		Where("consent_token = ? AND approval_status = ?", consentToken, "pending").
		Updates(map[string]interface{}{
			"approval_status": decision,
			"response_at":     time.Now(),
			"status":          listingStatus,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		// Either the token is unknown or another request already won.
		var existing Property
		err := db.DB.First(&existing, "consent_token = ?", consentToken).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsentNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, &AlreadyProcessedError{Action: existing.ApprovalStatus}
	}

	var updated Property
	if err := db.DB.First(&updated, "consent_token = ?", consentToken).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}
