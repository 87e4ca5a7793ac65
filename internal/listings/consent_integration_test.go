package listings_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/db"
	"github.com/BrokerNest/BN-Backend/internal/listings"
	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	// Load .env.local relative to the repo root (two directories up from internal/listings/).
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available — skip all integration tests gracefully.
		os.Exit(m.Run())
	}

	if os.Getenv("SESSION_SECRET") == "" {
		os.Setenv("SESSION_SECRET", "integration-test-secret")
	}

	db.Connect()
	dbAvailable = true

	// Set up tables (idempotent).
	auth.Init()
	listings.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Mount("/listings", listings.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// createConsentListing inserts a listing in pending_consent with a fresh
// consent token and registers cleanup. Returns the listing and its token.
func createConsentListing(t *testing.T) (*listings.Property, string) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	consentToken := uuid.NewString()
	listing := listings.Property{
		ID:             uuid.New(),
		AgentID:        fmt.Sprintf("agent_%s", uuid.New().String()[:8]),
		Title:          "Test listing",
		Address:        "1 Test Way",
		City:           "Testville",
		Price:          100000,
		Status:         "pending_consent",
		OwnerName:      "Test Owner",
		OwnerPhone:     "+15550009999",
		ConsentToken:   &consentToken,
		ApprovalStatus: "pending",
	}
	if err := db.DB.Create(&listing).Error; err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}

	t.Cleanup(func() {
		db.DB.Where("id = ?", listing.ID).Delete(&listings.Property{})
	})

	return &listing, consentToken
}

func postConsent(t *testing.T, token, action string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(
		fmt.Sprintf("%s/listings/consent/%s/%s", testServer.URL, token, action),
		"application/json", nil)
	if err != nil {
		t.Fatalf("POST consent %s: %v", action, err)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	resp.Body.Close()
	return resp, body
}

// TestConsent_ApproveOnce verifies the single pending → approved transition:
// success payload, persisted status, and response_at set.
func TestConsent_ApproveOnce(t *testing.T) {
	listing, consentToken := createConsentListing(t)

	resp, body := postConsent(t, consentToken, "approve")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["success"] != true || body["action"] != "approve" {
		t.Errorf("unexpected body: %v", body)
	}

	var stored listings.Property
	if err := db.DB.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if stored.ApprovalStatus != "approved" {
		t.Errorf("expected approval_status approved, got %s", stored.ApprovalStatus)
	}
	if stored.Status != "pending_review" {
		t.Errorf("expected listing status pending_review, got %s", stored.Status)
	}
	if stored.ResponseAt == nil {
		t.Error("expected response_at to be set")
	} else if time.Since(*stored.ResponseAt) > time.Minute {
		t.Errorf("response_at looks stale: %v", stored.ResponseAt)
	}
}

// TestConsent_SecondDecisionConflicts verifies that once a decision landed,
// any further decision gets 409 with the prior decision disclosed and the
// stored state untouched.
func TestConsent_SecondDecisionConflicts(t *testing.T) {
	listing, consentToken := createConsentListing(t)

	resp, _ := postConsent(t, consentToken, "approve")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first approve: expected 200, got %d", resp.StatusCode)
	}

	resp, body := postConsent(t, consentToken, "reject")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d", resp.StatusCode)
	}
	if body["message"] != "Consent already processed" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["action"] != "approved" {
		t.Errorf("expected prior action approved, got %v", body["action"])
	}

	var stored listings.Property
	if err := db.DB.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if stored.ApprovalStatus != "approved" {
		t.Errorf("stored state changed by rejected conflict: %s", stored.ApprovalStatus)
	}
}

// TestConsent_RejectMarksListingRejected verifies the reject variant.
func TestConsent_RejectMarksListingRejected(t *testing.T) {
	listing, consentToken := createConsentListing(t)

	resp, body := postConsent(t, consentToken, "reject")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["action"] != "reject" {
		t.Errorf("unexpected action: %v", body["action"])
	}

	var stored listings.Property
	if err := db.DB.First(&stored, "id = ?", listing.ID).Error; err != nil {
		t.Fatalf("reloading listing: %v", err)
	}
	if stored.ApprovalStatus != "rejected" || stored.Status != "rejected" {
		t.Errorf("expected rejected/rejected, got %s/%s", stored.ApprovalStatus, stored.Status)
	}
}

// TestConsent_UnknownToken verifies the 404 shape for a token that does not
// exist.
func TestConsent_UnknownToken(t *testing.T) {
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	resp, body := postConsent(t, "doesnotexist", "approve")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body["message"] != "Consent link invalid" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

// TestConsent_ConcurrentDecisions races an approve against a reject on the
// same pending token. Exactly one must win; the loser must see 409. Never two
// successes, never a lost update.
func TestConsent_ConcurrentDecisions(t *testing.T) {
	_, consentToken := createConsentListing(t)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	actions := []string{"approve", "reject"}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(
				fmt.Sprintf("%s/listings/consent/%s/%s", testServer.URL, consentToken, actions[i]),
				"application/json", nil)
			if err != nil {
				t.Errorf("POST consent: %v", err)
				return
			}
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	ok := 0
	conflict := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	if ok != 1 || conflict != 1 {
		t.Errorf("expected exactly one success and one conflict, got codes %v", codes)
	}
}

// TestConsent_GetSummary verifies the owner-facing summary endpoint.
func TestConsent_GetSummary(t *testing.T) {
	listing, consentToken := createConsentListing(t)

	resp, err := http.Get(fmt.Sprintf("%s/listings/consent/%s", testServer.URL, consentToken))
	if err != nil {
		t.Fatalf("GET consent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["title"] != listing.Title {
		t.Errorf("expected title %q, got %v", listing.Title, body["title"])
	}
	if body["approval_status"] != "pending" {
		t.Errorf("expected approval_status pending, got %v", body["approval_status"])
	}
	if _, leaked := body["consent_token"]; leaked {
		t.Error("summary must not leak the consent token")
	}
}
