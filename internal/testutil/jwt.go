package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/hollyabrams/express-jobly/internal/types"
)

// TokenClaims mirrors the claim layout the authjwt middleware reads.
type TokenClaims struct {
	Claim map[string]interface{} `json:"claim"`
	jwt.RegisteredClaims
}

// GenerateECDSAKeyPairPEM generates a P-256 key pair for tests.
// Returns (publicKeyPEM, privateKeyPEM).
func GenerateECDSAKeyPairPEM(t *testing.T) (string, string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Failed to generate ECDSA private key")

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err, "Failed to marshal ECDSA private key")
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	pubBytes, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err, "Failed to marshal ECDSA public key")
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	return string(pubPEM), string(privPEM)
}

// GenerateTestJWT signs an ES256 token carrying the user context.
func GenerateTestJWT(privateKeyPEM string, user types.UserContext) (string, error) {
	return signTestJWT(privateKeyPEM, user, time.Now().Add(time.Hour))
}

// GenerateExpiredTestJWT signs a token that expired a minute ago.
func GenerateExpiredTestJWT(privateKeyPEM string, user types.UserContext) (string, error) {
	return signTestJWT(privateKeyPEM, user, time.Now().Add(-time.Minute))
}

func signTestJWT(privateKeyPEM string, user types.UserContext, expiresAt time.Time) (string, error) {
	privateKey, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("unable to parse private key: %w", err)
	}

	claims := TokenClaims{
		Claim: map[string]interface{}{
			"username": user.Username,
			"role":     user.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate test JWT: %w", err)
	}
	return token, nil
}

// AdminUser and RegularUser are ready-made identities for route tests.
var (
	AdminUser   = types.UserContext{Username: "admin", Role: types.AdminRole}
	RegularUser = types.UserContext{Username: "u1", Role: types.UserRole}
)
