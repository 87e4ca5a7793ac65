package db

import "gorm.io/gorm"

// EnsureSchema creates the named Postgres schema if it does not exist. Each
// module owns one schema (app_auth, listings, crm, inbox) and calls this from
// its Init before migrating tables.
func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
