package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const learnerIssuer = "steam4all"

// ErrInvalidLearnerToken is returned for tokens that fail verification
var ErrInvalidLearnerToken = errors.New("invalid learner token")

type learnerClaims struct {
	jwt.RegisteredClaims
}

// LearnerTokens mints and verifies the anonymous learner identity cookie.
// The learner id is a random UUID carried as the token subject.
type LearnerTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewLearnerTokens derives the signing key from the session secret
func NewLearnerTokens(secret string, ttl time.Duration) *LearnerTokens {
	return &LearnerTokens{
		key: DeriveKey(secret, PurposeLearnerToken),
		ttl: ttl,
		now: time.Now,
	}
}

// TTL returns how long issued tokens stay valid
func (t *LearnerTokens) TTL() time.Duration { return t.ttl }

// NewLearnerID returns a fresh random learner id
func NewLearnerID() string {
	return uuid.NewString()
}

// Issue signs a token for learnerID
func (t *LearnerTokens) Issue(learnerID string) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := learnerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    learnerIssuer,
			Subject:   learnerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign learner token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks the signature, issuer and expiry and returns the learner id
func (t *LearnerTokens) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(learnerIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	claims := &learnerClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidLearnerToken
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidLearnerToken
	}
	return claims.Subject, nil
}
