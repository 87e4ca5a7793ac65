package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BrokerNest/BN-Backend/internal/middleware"
	"github.com/BrokerNest/BN-Backend/internal/token"
	"github.com/BrokerNest/BN-Backend/internal/utils"
)

// mockVerifier implements middleware.CredentialVerifier without touching the
// real codec.
type mockVerifier struct {
	identity *token.Identity
	err      error
}

func (m mockVerifier) Verify(tokenStr string) (*token.Identity, error) {
	return m.identity, m.err
}

// callWithCookie wraps a simple 200-OK inner handler in the provided middleware,
// optionally setting one cookie on the request, and returns the recorded response.
func callWithCookie(t *testing.T, mw func(http.Handler) http.Handler, cookieName, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if cookieName != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestSessionMiddleware_MissingCookie verifies that a request with no session
// cookie receives a 401 response.
func TestSessionMiddleware_MissingCookie(t *testing.T) {
	mw := middleware.SessionMiddleware(mockVerifier{})

	rec := callWithCookie(t, mw, "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not authenticated") {
		t.Errorf("expected body to contain %q, got: %q", "Not authenticated", rec.Body.String())
	}
}

// TestSessionMiddleware_VerifierError verifies that any verification failure
// results in a uniform 401 "Invalid session" response.
func TestSessionMiddleware_VerifierError(t *testing.T) {
	mw := middleware.SessionMiddleware(mockVerifier{err: token.ErrInvalidCredential})

	rec := callWithCookie(t, mw, "session", "garbage-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid session") {
		t.Errorf("expected body to contain %q, got: %q", "Invalid session", rec.Body.String())
	}
}

// TestSessionMiddleware_ExpiredIndistinguishable verifies that an expired
// credential produces the same response as a tampered one.
func TestSessionMiddleware_ExpiredIndistinguishable(t *testing.T) {
	issuer := token.New("test-secret")
	expired, err := issuer.Issue("user-1", "+15551230000", -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mw := middleware.SessionMiddleware(issuer)

	recExpired := callWithCookie(t, mw, "session", expired)
	recGarbage := callWithCookie(t, mw, "session", "not-a-token")

	if recExpired.Code != http.StatusUnauthorized || recGarbage.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", recExpired.Code, recGarbage.Code)
	}
	if recExpired.Body.String() != recGarbage.Body.String() {
		t.Errorf("expired and garbage tokens should be indistinguishable: %q vs %q",
			recExpired.Body.String(), recGarbage.Body.String())
	}
}

// TestSessionMiddleware_ValidSession verifies that a valid credential passes
// through and that subject and phone land in the request context.
func TestSessionMiddleware_ValidSession(t *testing.T) {
	const wantUserID = "agent-123"
	const wantPhone = "+15559876543"

	verifier := mockVerifier{identity: &token.Identity{SubjectID: wantUserID, Phone: wantPhone}}

	// inner handler reads and checks the identity from context
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "userID not in context", http.StatusInternalServerError)
			return
		}
		if gotUserID != wantUserID {
			http.Error(w, "wrong userID in context: "+gotUserID, http.StatusInternalServerError)
			return
		}
		gotPhone, ok := utils.GetPhoneFromContext(r.Context())
		if !ok || gotPhone != wantPhone {
			http.Error(w, "wrong phone in context: "+gotPhone, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mw := middleware.SessionMiddleware(verifier)
	handler := mw(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "valid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestSessionMiddleware_RealCodecRoundtrip runs the middleware against the
// real issuer end to end.
func TestSessionMiddleware_RealCodecRoundtrip(t *testing.T) {
	issuer := token.New("test-secret")
	tok, err := issuer.Issue("agent-9", "+15550001111", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	mw := middleware.SessionMiddleware(issuer)
	rec := callWithCookie(t, mw, "session", tok)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestAdminMiddleware_MissingUserID verifies that AdminMiddleware returns 401
// when no userID is present in the request context (i.e. SessionMiddleware did
// not run or injected nothing). This test does not require a database.
func TestAdminMiddleware_MissingUserID(t *testing.T) {
	mw := middleware.AdminMiddleware()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw(inner)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	// Deliberately no userID in context.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "missing user ID") {
		t.Errorf("expected body to contain %q, got: %q", "missing user ID", body)
	}
}
