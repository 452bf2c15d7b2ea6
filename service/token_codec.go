// file: service/token_codec.go

package service

import (
	"errors"
	"fmt"
	"time"

	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/golang-jwt/jwt/v5"
)

// Typed parse failures. Callers branch on these to pick the right HTTP
// reason; no partial claims are ever returned alongside them.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenSignature   = errors.New("token signature invalid")
	ErrTokenUnsupported = errors.New("token unsupported")
)

// TokenCodec signs and verifies access tokens. Verification is pure CPU
// work against the shared key; it never touches the session store, which is
// what keeps the edge stateless.
type TokenCodec struct {
	keys      *SigningKeyProvider
	clockSkew time.Duration
	now       func() time.Time
}

func NewTokenCodec(keys *SigningKeyProvider, clockSkew time.Duration) *TokenCodec {
	return &TokenCodec{
		keys:      keys,
		clockSkew: clockSkew,
		now:       time.Now,
	}
}

// Issue builds and signs an access token for the subject. Roles are embedded
// as a claim so downstream services can read them without a directory call.
func (c *TokenCodec) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	now := c.now()

	claims := &model.AccessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.keys.SigningKey())
	if err != nil {
		logger.Log.WithError(err).WithField("subject", subject).Error("Failed to sign access token")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// Parse verifies the signature and expiry of a presented token and returns
// its claims. A token whose expiry equals the verification instant is
// already expired; skew tolerance is zero unless configured otherwise.
func (c *TokenCodec) Parse(tokenString string) (*model.AccessClaims, error) {
	var lastErr error

	for _, key := range c.keys.VerificationKeys() {
		claims := &model.AccessClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims,
			func(token *jwt.Token) (interface{}, error) { return key, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithLeeway(c.clockSkew),
			jwt.WithTimeFunc(c.now),
		)
		if err == nil {
			return claims, nil
		}

		lastErr = err
		// A signature mismatch may just mean the token was signed with the
		// other key during a rotation overlap window; try the next one.
		// Every other failure is final.
		if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			break
		}
	}

	return nil, c.classify(lastErr)
}

func (c *TokenCodec) classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenUnsupported
	}
}
