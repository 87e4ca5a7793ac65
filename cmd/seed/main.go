// Seeds demo users, clients, and listings from a YAML fixture.
//
// Usage:
//
//	go run ./cmd/seed --file seed.yaml [--dry-run]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/crm"
	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/listings"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

var (
	filePath = flag.String("file", "", "Path to the YAML fixture (required)")
	dryRun   = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
)

type Fixture struct {
	Users []struct {
		Phone    string `yaml:"phone"`
		FullName string `yaml:"full_name"`
		Agency   string `yaml:"agency"`
		Role     string `yaml:"role"`
		Status   string `yaml:"status"`
		Pin      string `yaml:"pin"`
	} `yaml:"users"`
	Listings []struct {
		AgentPhone string   `yaml:"agent_phone"`
		Title      string   `yaml:"title"`
		Address    string   `yaml:"address"`
		City       string   `yaml:"city"`
		Price      int64    `yaml:"price"`
		Rooms      int      `yaml:"rooms"`
		Features   []string `yaml:"features"`
		Status     string   `yaml:"status"`
	} `yaml:"listings"`
	Clients []struct {
		AgentPhone string   `yaml:"agent_phone"`
		Name       string   `yaml:"name"`
		Phone      string   `yaml:"phone"`
		Email      string   `yaml:"email"`
		Tags       []string `yaml:"tags"`
	} `yaml:"clients"`
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *filePath == "" {
		fatalf("--file is required")
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		fatalf("reading fixture: %v", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		fatalf("parsing fixture: %v", err)
	}

	for _, u := range fixture.Users {
		if u.Phone == "" {
			fatalf("user without phone in fixture")
		}
	}
	fmt.Printf("Fixture OK: %d users, %d listings, %d clients\n",
		len(fixture.Users), len(fixture.Listings), len(fixture.Clients))

	if *dryRun {
		fmt.Println("Dry run: no writes performed")
		return
	}

	db.Connect()
	auth.Init()
	listings.Init()
	crm.Init()

	// Phone → user id, for wiring listings and clients to their agent
	agents := map[string]string{}

	for _, u := range fixture.Users {
		user := auth.User{
			ID:       uuid.NewString(),
			Phone:    u.Phone,
			FullName: u.FullName,
			Agency:   u.Agency,
			Role:     defaultStr(u.Role, "agent"),
			Status:   defaultStr(u.Status, "approved"),
		}
		if u.Pin != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(u.Pin), bcrypt.DefaultCost)
			if err != nil {
				fatalf("hashing pin for %s: %v", u.Phone, err)
			}
			user.HashedPIN = string(hashed)
		}

		if err := db.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "agency", "role", "status"}),
		}).Create(&user).Error; err != nil {
			fatalf("upserting user %s: %v", u.Phone, err)
		}

		var persisted auth.User
		if err := db.DB.First(&persisted, "phone = ?", u.Phone).Error; err != nil {
			fatalf("reloading user %s: %v", u.Phone, err)
		}
		agents[u.Phone] = persisted.ID
	}

	for _, l := range fixture.Listings {
		agentID, ok := agents[l.AgentPhone]
		if !ok {
			fatalf("listing %q references unknown agent %s", l.Title, l.AgentPhone)
		}
		listing := listings.Property{
			ID:       uuid.New(),
			AgentID:  agentID,
			Title:    l.Title,
			Address:  l.Address,
			City:     l.City,
			Price:    l.Price,
			Rooms:    l.Rooms,
			Features: l.Features,
			Status:   defaultStr(l.Status, "draft"),
		}
		if err := db.DB.Create(&listing).Error; err != nil {
			fatalf("creating listing %q: %v", l.Title, err)
		}
	}

	for _, c := range fixture.Clients {
		agentID, ok := agents[c.AgentPhone]
		if !ok {
			fatalf("client %q references unknown agent %s", c.Name, c.AgentPhone)
		}
		client := crm.Client{
			ID:      uuid.New(),
			AgentID: agentID,
			Name:    c.Name,
			Phone:   c.Phone,
			Email:   c.Email,
			Tags:    c.Tags,
		}
		if err := db.DB.Create(&client).Error; err != nil {
			fatalf("creating client %q: %v", c.Name, err)
		}
	}

	fmt.Println("✓ Seed complete")
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func fatalf(format string, args ...any) {
	log.Fatalf(format, args...)
}
