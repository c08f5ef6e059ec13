package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

const issuer = "neobank-ledger"

type Claims struct {
	AccountID     string
	AccountNumber string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	AccountNumber string `json:"account_number"`
}

// GenerateToken issues an HS256 session token whose subject is the
// account's national ID.
func GenerateToken(accountID, accountNumber, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		AccountNumber: accountNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	if !domain.IsValidNationalID(tc.Subject) || tc.Subject != domain.NormalizeNationalID(tc.Subject) {
		return nil, fmt.Errorf("ValidateToken: invalid subject in token")
	}

	return &Claims{
		AccountID:     tc.Subject,
		AccountNumber: tc.AccountNumber,
	}, nil
}
