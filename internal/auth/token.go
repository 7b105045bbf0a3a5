// Package auth resolves the caller identity from bearer tokens. It only
// establishes who is calling; roles are looked up per call by the services.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Parse validates an HS256 token and returns the user id it carries.
func (v *Verifier) Parse(tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", domain.Wrap(domain.ErrUnauthenticated, errors.New("no signing secret configured"))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", domain.Wrap(domain.ErrUnauthenticated, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.UserID, nil
}

// ParseHeader accepts an "Authorization" header value.
func (v *Verifier) ParseHeader(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", domain.ErrUnauthenticated
	}
	return v.Parse(strings.TrimSpace(raw))
}

// IssueToken signs a token for userID. The API never issues tokens itself;
// this is used by tooling and tests.
func (v *Verifier) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
