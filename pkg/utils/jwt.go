package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "thermotrack"

type tokenSettings struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

var tokens tokenSettings

// InitJWT installs the signing secrets and token lifetimes. It must run
// before any token is issued or checked.
func InitJWT(accessSec, refreshSec string, accessExp, refreshExp time.Duration) {
	tokens = tokenSettings{
		accessSecret:  []byte(accessSec),
		refreshSecret: []byte(refreshSec),
		accessTTL:     accessExp,
		refreshTTL:    refreshExp,
	}
}

// Claims carried by an access token. Subject mirrors UserID as a string.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a short-lived HS256 access token
func GenerateAccessToken(userID uint, role string) (string, error) {
	issued := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(tokens.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokens.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses an access token, rejecting other algorithms,
// foreign issuers and expired tokens
func ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return tokens.accessSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	return claims, nil
}

// GenerateRefreshToken returns a random opaque refresh token. Only its hash is stored.
func GenerateRefreshToken() string {
	return uuid.NewString()
}

// HashRefreshToken derives the stored form of a refresh token, keyed by the refresh secret
func HashRefreshToken(token string) string {
	sum := sha256.Sum256(append(append([]byte{}, tokens.refreshSecret...), token...))
	return hex.EncodeToString(sum[:])
}

// GetRefreshTokenExpiry returns the refresh token lifetime
func GetRefreshTokenExpiry() time.Duration {
	return tokens.refreshTTL
}
