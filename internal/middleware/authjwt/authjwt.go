package authjwt

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
	"github.com/hollyabrams/express-jobly/internal/types"
)

// Config defines the config for the JWT middleware.
type Config struct {
	// The EC public key for validating ES256 tokens.
	PublicKey string
	// The claim key where the UserContext is stored.
	ClaimKey string
	// The context key to store the UserContext.
	UserCtxName string
}

var (
	errInvalidClaim = errors.New("invalid token claim format")
	errMissingUser  = errors.New("missing username in claim")
)

// New creates a new middleware handler. It panics when the public key does not parse.
func New(cfg Config) fiber.Handler {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.PublicKey))
	if err != nil {
		panic(fmt.Sprintf("failed to parse EC public key: %v", err))
	}

	claimKey := cfg.ClaimKey
	if claimKey == "" {
		claimKey = types.ClaimKey
	}
	userKey := cfg.UserCtxName
	if userKey == "" {
		userKey = types.UserCtxName
	}

	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, "Missing or invalid JWT", "")
		}

		userCtx, err := validate(tokenString, ecPublicKey, claimKey)
		if err != nil {
			log.Warn("Rejected token for %s %s: %v", c.Method(), c.Path(), err)
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				return unauthorized(c, "Token has expired", "")
			case errors.Is(err, errInvalidClaim), errors.Is(err, errMissingUser):
				return unauthorized(c, "Invalid user context in token", err.Error())
			default:
				return unauthorized(c, "Invalid token", err.Error())
			}
		}

		c.Locals(userKey, userCtx)
		return c.Next()
	}
}

// ValidateToken validates a JWT token and returns the UserContext if valid.
// It does not write to any response.
func ValidateToken(tokenString string, publicKey string, claimKey string) (types.UserContext, error) {
	ecPublicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return types.UserContext{}, fmt.Errorf("failed to parse EC public key: %w", err)
	}
	if claimKey == "" {
		claimKey = types.ClaimKey
	}
	return validate(tokenString, ecPublicKey, claimKey)
}

// extractToken reads the Authorization bearer header, then the access_token cookie
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get(types.HeaderAuthorization)
	if strings.HasPrefix(authHeader, types.BearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, types.BearerPrefix)); token != "" {
			return token
		}
	}
	return c.Cookies(types.AccessTokenName)
}

func validate(tokenString string, key *ecdsa.PublicKey, claimKey string) (types.UserContext, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Only ECDSA signatures are accepted.
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return types.UserContext{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return types.UserContext{}, errors.New("invalid token")
	}

	claimData, ok := claims[claimKey].(map[string]interface{})
	if !ok {
		return types.UserContext{}, errInvalidClaim
	}

	return mapToUserContext(claimData)
}

// mapToUserContext converts claim data to UserContext
func mapToUserContext(claimData map[string]interface{}) (types.UserContext, error) {
	var userCtx types.UserContext

	username, ok := claimData["username"].(string)
	if !ok || username == "" {
		return userCtx, errMissingUser
	}
	userCtx.Username = username

	if role, ok := claimData["role"].(string); ok {
		userCtx.Role = role
	}

	return userCtx, nil
}

func unauthorized(c *fiber.Ctx, message, details string) error {
	body := fiber.Map{
		"code":    "UNAUTHORIZED",
		"message": message,
	}
	if details != "" {
		body["details"] = details
	}
	return c.Status(fiber.StatusUnauthorized).JSON(body)
}
