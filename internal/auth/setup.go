package auth

import (
	"log"

	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/token"
)

// Issuer signs and verifies session credentials. Set in Init().
var Issuer *token.Issuer

// SMS is the verification-code provider. Nil when SMS_API_KEY is unset.
var SMS *SMSClient

// Limiter throttles code requests per phone.
var Limiter = newCodeLimiter()

func Init() {
	if err := db.EnsureSchema(db.DB, "app_auth"); err != nil {
		log.Fatal("Failed to ensure schema app_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &VerificationCode{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	Issuer = token.FromEnv()

	SMS = NewSMSClient()
	if SMS == nil {
		log.Println("[auth] SMS_API_KEY not set — code delivery disabled")
	}
}
