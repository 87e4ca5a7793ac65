package crm_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/auth"
	"github.com/BrokerNest/BN-Backend/internal/crm"
	"github.com/BrokerNest/BN-Backend/internal/db"
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
	// Load .env.local relative to the repo root (two directories up from internal/crm/).
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

	// Set up tables (idempotent). auth.Init also builds the credential issuer
	// the session middleware verifies against.
	auth.Init()
	crm.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Mount("/crm", crm.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// createTestAgent inserts an approved agent and returns their id plus a
// session cookie for requests on their behalf.
func createTestAgent(t *testing.T) (agentID string, cookie *http.Cookie) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	user := auth.User{
		ID:       uuid.NewString(),
		Phone:    fmt.Sprintf("+1888%07d", time.Now().UnixNano()%10000000),
		FullName: "CRM Test Agent",
		Status:   "approved",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test agent: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Where("agent_id = ?", user.ID).Delete(&crm.Deal{})
		db.DB.Where("agent_id = ?", user.ID).Delete(&crm.Client{})
		db.DB.Where("id = ?", user.ID).Delete(&auth.User{})
	})

	tok, err := auth.Issuer.Issue(user.ID, user.Phone, time.Hour)
	if err != nil {
		t.Fatalf("issuing session: %v", err)
	}
	return user.ID, &http.Cookie{Name: "session", Value: tok}
}

func doJSON(t *testing.T, method, path string, cookie *http.Cookie, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, testServer.URL+path, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

// TestClient_OwnershipScoping verifies one agent cannot read another agent's
// contact. The response is 404, not 403, so existence is not disclosed.
func TestClient_OwnershipScoping(t *testing.T) {
	_, cookieA := createTestAgent(t)
	_, cookieB := createTestAgent(t)

	resp := doJSON(t, http.MethodPost, "/crm/clients", cookieA, map[string]any{
		"name":  "Owner A Contact",
		"phone": "+15551112222",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating client: expected 201, got %d", resp.StatusCode)
	}
	var created crm.Client
	decodeBody(t, resp, &created)

	own := doJSON(t, http.MethodGet, "/crm/clients/"+created.ID.String(), cookieA, nil)
	own.Body.Close()
	if own.StatusCode != http.StatusOK {
		t.Errorf("owner read: expected 200, got %d", own.StatusCode)
	}

	other := doJSON(t, http.MethodGet, "/crm/clients/"+created.ID.String(), cookieB, nil)
	other.Body.Close()
	if other.StatusCode != http.StatusNotFound {
		t.Errorf("cross-agent read: expected 404, got %d", other.StatusCode)
	}
}

// TestDeal_StageValidation verifies unknown stages are rejected and a valid
// stage change lands.
func TestDeal_StageValidation(t *testing.T) {
	_, cookie := createTestAgent(t)

	resp := doJSON(t, http.MethodPost, "/crm/clients", cookie, map[string]any{
		"name": "Deal Contact",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating client: expected 201, got %d", resp.StatusCode)
	}
	var client crm.Client
	decodeBody(t, resp, &client)

	resp = doJSON(t, http.MethodPost, "/crm/deals", cookie, map[string]any{
		"client_id": client.ID,
		"amount":    450000,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating deal: expected 201, got %d", resp.StatusCode)
	}
	var deal crm.Deal
	decodeBody(t, resp, &deal)
	if deal.Stage != "lead" {
		t.Errorf("new deal should start at lead, got %s", deal.Stage)
	}

	bad := doJSON(t, http.MethodPut, "/crm/deals/"+deal.ID.String(), cookie, map[string]any{
		"stage": "daydreaming",
	})
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown stage: expected 400, got %d", bad.StatusCode)
	}

	good := doJSON(t, http.MethodPut, "/crm/deals/"+deal.ID.String(), cookie, map[string]any{
		"stage": "viewing",
	})
	good.Body.Close()
	if good.StatusCode != http.StatusOK {
		t.Errorf("valid stage: expected 200, got %d", good.StatusCode)
	}

	var stored crm.Deal
	if err := db.DB.First(&stored, "id = ?", deal.ID).Error; err != nil {
		t.Fatalf("reloading deal: %v", err)
	}
	if stored.Stage != "viewing" {
		t.Errorf("expected stage viewing after update, got %s", stored.Stage)
	}
}

// TestDeal_ClientMustBelongToAgent verifies a deal cannot be opened against
// another agent's client.
func TestDeal_ClientMustBelongToAgent(t *testing.T) {
	_, cookieA := createTestAgent(t)
	_, cookieB := createTestAgent(t)

	resp := doJSON(t, http.MethodPost, "/crm/clients", cookieA, map[string]any{
		"name": "A's Contact",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating client: expected 201, got %d", resp.StatusCode)
	}
	var client crm.Client
	decodeBody(t, resp, &client)

	stolen := doJSON(t, http.MethodPost, "/crm/deals", cookieB, map[string]any{
		"client_id": client.ID,
		"amount":    100,
	})
	stolen.Body.Close()
	if stolen.StatusCode != http.StatusNotFound {
		t.Errorf("cross-agent deal: expected 404, got %d", stolen.StatusCode)
	}
}
