package auth

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const codeDigits = 6

// GenerateCode returns a 6-digit numeric verification code using crypto/rand.
func GenerateCode() (string, error) {
	b := make([]byte, codeDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, codeDigits)
	for i := 0; i < codeDigits; i++ {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

// HashCode returns a SHA-256 hash of the code, hex-encoded.
func HashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// CodeEqual performs constant-time comparison of the provided code's hash with
// the stored hash.
func CodeEqual(providedCode, storedHash string) bool {
	providedHash := HashCode(providedCode)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

// SMSClient sends verification codes through an OTP SMS gateway.
type SMSClient struct {
	apiKey     string
	baseURL    string
	sender     string
	httpClient *http.Client
}

// NewSMSClient creates a client from the SMS_API_KEY env var.
// Returns nil if the key is not set (graceful degradation).
func NewSMSClient() *SMSClient {
	key := os.Getenv("SMS_API_KEY")
	if key == "" {
		return nil
	}
	baseURL := os.Getenv("SMS_API_URL")
	if baseURL == "" {
		baseURL = "https://www.smslocal.com/dev/bulkV2"
	}
	return &SMSClient{
		apiKey:  key,
		baseURL: baseURL,
		sender:  os.Getenv("SMS_SENDER"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendCode delivers the code to the given E.164 phone number. The code itself
// is never logged.
func (c *SMSClient) SendCode(phone, code string) error {
	body := map[string]interface{}{
		"route":     "otp",
		"numbers":   phone,
		"variables": code,
	}
	if c.sender != "" {
		body["sender"] = c.sender
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
