// Package auth issues and verifies the signed bearer tokens that identify a
// visitor between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalVisitor is the only principal type this service issues.
const PrincipalVisitor = "visitor"

// Claims carries the token subject (account id), principal type and expiry.
type Claims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// AccountID returns the parsed subject.
func (c *Claims) AccountID() uuid.UUID {
	id, _ := uuid.Parse(c.Subject)
	return id
}

// TokenService mints and checks HS256 tokens with a server-held secret.
type TokenService struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

// NewTokenService returns a TokenService that issues tokens valid for
// validity unless IssueWithExpiry overrides it.
func NewTokenService(secretKey []byte, validity time.Duration) *TokenService {
	return &TokenService{secretKey: secretKey, validity: validity, now: time.Now}
}

// Issue returns a token for accountID with the default lifetime.
func (s *TokenService) Issue(accountID uuid.UUID) (string, error) {
	return s.IssueWithExpiry(accountID, s.validity)
}

// IssueWithExpiry returns a token for accountID that expires after ttl.
func (s *TokenService) IssueWithExpiry(accountID uuid.UUID, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
		Type: PrincipalVisitor,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses tokenString and returns its claims. Failures wrap
// common.ErrTokenExpired, common.ErrTokenClaims or common.ErrInvalidToken.
// The principal type is returned as-is (empty when absent); callers decide
// whether it is allowed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	// Only visitor subjects are account ids; other principals, including
	// tokens without a type, go back to the caller untouched.
	if claims.Type == PrincipalVisitor {
		if _, err := uuid.Parse(claims.Subject); err != nil {
			return nil, fmt.Errorf("%w: subject is not an account id", common.ErrTokenClaims)
		}
	}

	return claims, nil
}
