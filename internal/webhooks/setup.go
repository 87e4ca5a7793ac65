package webhooks

import (
	"log"

	"github.com/BrokerNest/BN-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "inbox"); err != nil {
		log.Fatal("Failed to ensure schema inbox: ", err)
	}

	if err := db.DB.AutoMigrate(&Lead{}); err != nil {
		log.Fatal("Failed to auto-migrate inbox tables: ", err)
	}
}
