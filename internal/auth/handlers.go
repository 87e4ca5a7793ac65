package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	codeTTL     = 10 * time.Minute
	sessionTTL  = 24 * time.Hour
	extendedTTL = 30 * 24 * time.Hour
	setupWindow = 10 * time.Minute // how long a consumed code authorizes PIN setup
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// sessionCookie writes the signed credential into the "session" cookie.
// Secure is only set in production so local dev over plain HTTP still works.
func sessionCookie(w http.ResponseWriter, tokenStr string, keepLoggedIn bool) {
	maxAge := int(sessionTTL.Seconds())
	if keepLoggedIn {
		maxAge = int(extendedTTL.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   os.Getenv("APP_ENV") == "production",
	})
}

func issueSession(w http.ResponseWriter, user *User, keepLoggedIn bool) error {
	ttl := sessionTTL
	if keepLoggedIn {
		ttl = extendedTTL
	}
	tokenStr, err := Issuer.Issue(user.ID, user.Phone, ttl)
	if err != nil {
		return err
	}
	sessionCookie(w, tokenStr, keepLoggedIn)
	return nil
}

// RequestCodeHandler sends a one-time code to the given phone number.
func RequestCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !phonePattern.MatchString(req.Phone) {
		http.Error(w, "phone must be E.164 format", http.StatusBadRequest)
		return
	}

	if !Limiter.Allow(req.Phone) {
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Too many code requests", http.StatusTooManyRequests)
		return
	}

	if SMS == nil {
		http.Error(w, "SMS provider not configured", http.StatusServiceUnavailable)
		return
	}

	code, err := GenerateCode()
	if err != nil {
		http.Error(w, "Failed to generate code", http.StatusInternalServerError)
		return
	}

	vc := VerificationCode{
		ID:        uuid.NewString(),
		Phone:     req.Phone,
		CodeHash:  HashCode(code),
		ExpiresAt: time.Now().Add(codeTTL),
	}
	if err := db.DB.Create(&vc).Error; err != nil {
		http.Error(w, "Failed to store code", http.StatusInternalServerError)
		return
	}

	if err := SMS.SendCode(req.Phone, code); err != nil {
		log.Printf("[auth] SMS send failed for %s: %v", req.Phone, err)
		http.Error(w, "Failed to send code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"sent": true})
}

// findValidCode returns the newest matching, unexpired code row for phone.
// consumedOK controls whether an already-consumed code (within setupWindow)
// is acceptable — PIN setup reuses the code verified moments earlier.
func findValidCode(phone, code string, consumedOK bool) (*VerificationCode, error) {
	var rows []VerificationCode
	if err := db.DB.Where("phone = ?", phone).
		Order("created_at DESC").
		Limit(5).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range rows {
		vc := &rows[i]
		if !CodeEqual(code, vc.CodeHash) {
			continue
		}
		if vc.ConsumedAt == nil {
			if now.Before(vc.ExpiresAt) {
				return vc, nil
			}
			continue
		}
		if consumedOK && now.Sub(*vc.ConsumedAt) < setupWindow {
			return vc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// VerifyCodeHandler checks a one-time code and creates the user record on
// first contact. No session is issued here; that happens at PIN setup or
// PIN verification.
func VerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !phonePattern.MatchString(req.Phone) || req.Code == "" {
		http.Error(w, "phone and code are required", http.StatusBadRequest)
		return
	}

	vc, err := findValidCode(req.Phone, req.Code, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Invalid or expired code", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Failed to verify code", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	if err := db.DB.Model(vc).Update("consumed_at", now).Error; err != nil {
		http.Error(w, "Failed to consume code", http.StatusInternalServerError)
		return
	}

	var user User
	err = db.DB.First(&user, "phone = ?", req.Phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{
			ID:     uuid.NewString(),
			Phone:  req.Phone,
			Role:   "agent",
			Status: "pending",
		}
		if err := db.DB.Create(&user).Error; err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		http.Error(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": user.ID,
		"pin_set": user.HashedPIN != "",
	})
}

// PinSetupHandler sets the user's PIN. It requires the code verified moments
// earlier, then issues the first session.
func PinSetupHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone        string `json:"phone"`
		Code         string `json:"code"`
		Pin          string `json:"pin"`
		KeepLoggedIn bool   `json:"keep_logged_in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !phonePattern.MatchString(req.Phone) || req.Code == "" {
		http.Error(w, "phone and code are required", http.StatusBadRequest)
		return
	}
	if !pinPattern.MatchString(req.Pin) {
		http.Error(w, "pin must be 4-6 digits", http.StatusBadRequest)
		return
	}

	if _, err := findValidCode(req.Phone, req.Code, true); err != nil {
		http.Error(w, "Invalid or expired code", http.StatusUnauthorized)
		return
	}

	var user User
	if err := db.DB.First(&user, "phone = ?", req.Phone).Error; err != nil {
		http.Error(w, "Couldn't find user", http.StatusUnauthorized)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing PIN", http.StatusInternalServerError)
		return
	}

	if err := db.DB.Model(&user).Update("hashed_pin", string(hashed)).Error; err != nil {
		http.Error(w, "Failed to save PIN", http.StatusInternalServerError)
		return
	}

	if err := issueSession(w, &user, req.KeepLoggedIn); err != nil {
		http.Error(w, "Failed to issue session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": user.ID,
		"status":  user.Status,
	})
}

// PinVerifyHandler logs a user in with phone + PIN. Unknown phone and wrong
// PIN produce the same 401.
func PinVerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone        string `json:"phone"`
		Pin          string `json:"pin"`
		KeepLoggedIn bool   `json:"keep_logged_in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var user User
	err := db.DB.First(&user, "phone = ?", req.Phone).Error
	if err != nil || user.HashedPIN == "" {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPIN), []byte(req.Pin)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := issueSession(w, &user, req.KeepLoggedIn); err != nil {
		http.Error(w, "Failed to issue session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id":   user.ID,
		"full_name": user.FullName,
		"role":      user.Role,
		"status":    user.Status,
	})
}

// LogoutHandler clears the session cookie. Credentials are self-contained, so
// there is nothing to revoke server-side; an old cookie value stays valid
// until its expiry claim.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Logout successful")
}

// MeHandler returns the current user's account.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		http.Error(w, "Couldn't find user", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateMeHandler updates the current user's profile fields.
func UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		FullName *string `json:"full_name,omitempty"`
		Agency   *string `json:"agency,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Agency != nil {
		updates["agency"] = *req.Agency
	}
	if len(updates) == 0 {
		http.Error(w, "Nothing to update", http.StatusBadRequest)
		return
	}

	if err := db.DB.Model(&User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		http.Error(w, "Failed to update profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
}
