package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAudience is the audience claim every API token must carry.
const TokenAudience = "budget-engine-api"

// ErrTokenSubjectMissing is returned for a verified token that names no user.
var ErrTokenSubjectMissing = errors.New("token subject missing")

// GenerateJWT signs an HS256 token for userID, issued by issuer for TokenAudience.
func GenerateJWT(userID string, secret string, expiry time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{TokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAndValidateJWT verifies an HS256 token signed with secret and returns its claims.
// The token must expire, be addressed to TokenAudience and name a subject. When issuer is
// not empty the iss claim must equal it.
func ParseAndValidateJWT(tokenString string, secret string, issuer string) (*jwt.RegisteredClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrTokenSubjectMissing
	}
	return claims, nil
}
