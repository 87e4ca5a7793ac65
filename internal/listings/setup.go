package listings

import (
	"log"

	"github.com/BrokerNest/BN-Backend/internal/db"
)

func Init() {
	// Ensure the listings schema exists
	if err := db.EnsureSchema(db.DB, "listings"); err != nil {
		log.Fatal("Failed to ensure schema listings: ", err)
	}

	// Create required extensions
	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(
		&Property{},
		&ReviewLog{},
	); err != nil {
		log.Fatal("Failed to auto-migrate listings tables: ", err)
	}

	log.Println("Listings module initialized")
}
