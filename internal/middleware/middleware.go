package middleware

import (
	"context"
	"net/http"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/token"
	"github.com/BrokerNest/BN-Backend/internal/utils"
)

// CredentialVerifier resolves a raw cookie value into an identity.
type CredentialVerifier interface {
	Verify(tokenStr string) (*token.Identity, error)
}

// SessionMiddleware reads the "session" cookie and verifies the credential it
// carries. A missing cookie, a tampered token, and an expired token all get
// the same 401 — the caller cannot tell them apart.
func SessionMiddleware(verifier CredentialVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session")
			if err != nil {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(cookie.Value)
			if err != nil {
				http.Error(w, "Invalid session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), utils.ContextUserIDKey, identity.SubjectID)
			ctx = context.WithValue(ctx, utils.ContextPhoneKey, identity.Phone)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var allowed = map[string]struct{}{
	"http://localhost:5173":         {},
	"http://localhost:5174":         {},
	"https://app.brokernest.io":     {},
	"https://app-dev.brokernest.io": {},
	"https://owners.brokernest.io":  {},
	"https://brokernest.github.io":  {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it’s on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		w.Header().Set("Access-Control-Expose-Headers", "Server-Timing, Retry-After, Cache-Control")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type User struct {
	ID   string `gorm:"primaryKey;column:id"`
	Role string
}

func (User) TableName() string { return "app_auth.users" }

func AdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get user ID from context
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: missing user ID in context", http.StatusUnauthorized)
				return
			}

			// Fetch the user by ID
			var user User
			if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
				http.Error(w, "Unauthorized: user not found", http.StatusUnauthorized)
				return
			}

			// Check role
			if user.Role != "admin" {
				http.Error(w, "Forbidden: admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
