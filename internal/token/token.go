package token

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential covers every verification failure: bad signature,
// malformed token, expired token. Callers must not distinguish between them.
var ErrInvalidCredential = errors.New("invalid credential")

// Identity is the verified payload of a session credential.
type Identity struct {
	SubjectID string
	Phone     string
}

// Claims is the JWT payload for a session credential. LegacyID carries the
// subject under the old "id" key so credentials issued by the previous
// backend version keep working until they expire.
type Claims struct {
	SubjectID string `json:"subject_id,omitempty"`
	LegacyID  string `json:"id,omitempty"`
	Phone     string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session credentials with a symmetric key.
// Tokens are self-contained: there is no server-side session store and no
// revocation list. Logout only clears the client cookie.
type Issuer struct {
	secret []byte
}

func New(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// FromEnv builds an Issuer from SESSION_SECRET. The secret is required; a
// server without one would mint forgeable sessions.
func FromEnv() *Issuer {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET is empty")
	}
	return New(secret)
}

// Issue produces a signed credential for the subject, valid for ttl.
func (i *Issuer) Issue(subjectID, phone string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		SubjectID: subjectID,
		Phone:     phone,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates a credential. Every failure mode collapses into
// ErrInvalidCredential. The legacy "id" claim is honored when "subject_id" is
// absent; "subject_id" wins when both are present.
func (i *Issuer) Verify(tokenStr string) (*Identity, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidCredential
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidCredential
	}

	subject := claims.SubjectID
	if subject == "" {
		subject = claims.LegacyID
	}
	if subject == "" {
		return nil, ErrInvalidCredential
	}

	return &Identity{SubjectID: subject, Phone: claims.Phone}, nil
}
