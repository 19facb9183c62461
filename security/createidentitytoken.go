package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "clockzy"

// Identity is the clockzy user a web token was issued to.
type Identity struct {
	UserID   string `json:"nameid"`
	UserName string `json:"unique_name"`
}

// IdentityClaims includes Identity and standard JWT claims
type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

func DecodeSecret(base64Secret string) ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("token secret is not valid base64: %w", err)
	}
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	return secret, nil
}

func CreateIdentityToken(identity Identity, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := IdentityClaims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}

// ParseIdentityToken verifies signature, issuer and expiry of tokenStr.
func ParseIdentityToken(tokenStr string, secret []byte) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
