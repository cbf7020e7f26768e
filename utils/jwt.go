package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"marketplace-backend/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer          = "marketplace-backend"
	defaultTokenLifetime = 24
)

// ErrSubjectMismatch is returned for a token whose sub claim does not name
// the user it carries.
var ErrSubjectMismatch = errors.New("token subject does not match user")

// Claims identify the caller on every authenticated request.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func signingKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("FATAL: JWT_SECRET environment variable is not set. Refusing to start with an insecure configuration.")
	}
	return []byte(secret)
}

// TokenLifetime reads JWT_EXPIRY_HOURS, falling back to 24 hours.
func TokenLifetime() time.Duration {
	hours := config.GetEnvInt("JWT_EXPIRY_HOURS", defaultTokenLifetime)
	if hours < 1 {
		hours = defaultTokenLifetime
	}
	return time.Duration(hours) * time.Hour
}

// GenerateToken issues an HS256 access token for the user.
func GenerateToken(userID uuid.UUID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var tokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithIssuer(tokenIssuer),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
)

// ValidateToken verifies signature, issuer and expiry, and checks that the
// subject names the same user as the user_id claim.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := tokenParser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.Subject != claims.UserID.String() {
		return nil, ErrSubjectMismatch
	}
	return claims, nil
}
