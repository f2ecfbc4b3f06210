package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

const (
	// CSRFFormField is the hidden form field carrying the token
	CSRFFormField = "csrf_token"
	// CSRFHeader carries the token on fetch requests
	CSRFHeader = "X-CSRF-Token"
)

var errNoLearner = errors.New("learner ID is required")

// CSRFGenerator issues HMAC-SHA256 tokens bound to a learner id. Tokens are
// derived, not stored, so any replica can validate them.
type CSRFGenerator struct {
	key []byte
}

// NewCSRFGenerator derives the CSRF key from the session secret
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{key: DeriveKey(secret, PurposeCSRF)}
}

// GenerateToken returns the CSRF token for learnerID
func (g *CSRFGenerator) GenerateToken(learnerID string) (string, error) {
	if learnerID == "" {
		return "", errNoLearner
	}
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(learnerID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token belongs to learnerID
func (g *CSRFGenerator) ValidateToken(learnerID, token string) bool {
	if token == "" {
		return false
	}
	expected, err := g.GenerateToken(learnerID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
