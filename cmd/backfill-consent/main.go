// Backfills consent tokens for listings submitted before token generation
// moved into the submit handler. Rows in pending_consent without a token get
// a fresh one; everything else is left alone.
//
// Usage:
//
//	go run ./cmd/backfill-consent --dry-run
//	go run ./cmd/backfill-consent --confirm
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

var (
	dsn     = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun  = flag.Bool("dry-run", false, "Report affected rows only; no DB writes")
	confirm = flag.Bool("confirm", false, "Required to perform the backfill")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if !*dryRun && !*confirm {
		fatalf("refusing to write without --confirm (use --dry-run to preview)")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT id FROM listings.properties
		WHERE status = 'pending_consent' AND consent_token IS NULL
		ORDER BY created_at`)
	if err != nil {
		fatalf("querying listings: %v", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			fatalf("scanning row: %v", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		fatalf("iterating rows: %v", err)
	}

	fmt.Printf("%d listings missing a consent token\n", len(ids))
	if *dryRun {
		fmt.Println("Dry run: no writes performed")
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		fatalf("starting transaction: %v", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `
			UPDATE listings.properties
			SET consent_token = $1, approval_status = 'pending', response_at = NULL
			WHERE id = $2 AND consent_token IS NULL`, uuid.NewString(), id)
		if err != nil {
			fatalf("updating listing %s: %v", id, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			log.Printf("listing %s changed underneath us; skipped", id)
		}
	}

	if err := tx.Commit(); err != nil {
		fatalf("committing: %v", err)
	}

	fmt.Printf("✓ Backfilled %d consent tokens\n", len(ids))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
