package crm

import (
	"log"

	"github.com/BrokerNest/BN-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "crm"); err != nil {
		log.Fatal("Failed to ensure schema crm: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(
		&Client{},
		&Task{},
		&Deal{},
	); err != nil {
		log.Fatal("Failed to auto-migrate crm tables: ", err)
	}

	log.Println("CRM module initialized")
}
