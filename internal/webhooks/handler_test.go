package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(raw []byte, sid, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	mac.Write([]byte(sid))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	raw := []byte(`{"Name":"Priya"}`)
	sig := signPayload(raw, "sub-1", "topsecret")

	if !verifySignature(sig, "sub-1", raw, "topsecret") {
		t.Error("expected valid signature to verify")
	}
}

func TestVerifySignature_Invalid(t *testing.T) {
	raw := []byte(`{"Name":"Priya"}`)
	sig := signPayload(raw, "sub-1", "topsecret")

	cases := []struct {
		name         string
		sig, sid     string
		body, secret string
	}{
		{"wrong secret", sig, "sub-1", string(raw), "othersecret"},
		{"wrong submission id", sig, "sub-2", string(raw), "topsecret"},
		{"tampered body", sig, "sub-1", `{"Name":"Mallory"}`, "topsecret"},
		{"missing prefix", hex.EncodeToString([]byte("nope")), "sub-1", string(raw), "topsecret"},
		{"empty signature", "", "sub-1", string(raw), "topsecret"},
	}
	for _, c := range cases {
		if verifySignature(c.sig, c.sid, []byte(c.body), c.secret) {
			t.Errorf("%s: expected verification to fail", c.name)
		}
	}
}

func TestStr_KeyFallback(t *testing.T) {
	m := map[string]any{"email": "a@b.c", "Name": "", "count": 3}

	if got := str(m, "Email", "email"); got != "a@b.c" {
		t.Errorf("expected fallback key to match, got %q", got)
	}
	if got := str(m, "Name", "name"); got != "" {
		t.Errorf("expected empty result for blank values, got %q", got)
	}
	if got := str(m, "count"); got != "" {
		t.Errorf("expected non-string value to be skipped, got %q", got)
	}
}
