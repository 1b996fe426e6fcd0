package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("token secret is empty")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims carries the chat identity of the tab user. ObjectID is the same
// external id the bot receives on activities.
type Claims struct {
	jwt.RegisteredClaims
	ObjectID string `json:"oid"`
	Name     string `json:"name,omitempty"`
}

// Verifier checks HS256 bearer tokens presented by the tab.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a verifier. When issuer is non-empty tokens must carry it.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// Verify parses the token and returns its claims.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ObjectID == "" {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}

// Issue signs a token for the given identity. Used by the development token
// endpoint and by tests.
func (v *Verifier) Issue(objectID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   objectID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		ObjectID: objectID,
		Name:     name,
	})
	return token.SignedString(v.secret)
}
