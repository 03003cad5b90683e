package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eventhub-api/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenLocal = "user"

// JWTProtected requires a valid access token. Refresh tokens are signed with
// another key and are rejected here.
func JWTProtected(accessSecret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(accessSecret)},
		Claims:     &services.AccessClaims{},
		ContextKey: tokenLocal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// GetClaims returns the access claims placed by JWTProtected.
func GetClaims(c *fiber.Ctx) (*services.AccessClaims, error) {
	token, ok := c.Locals(tokenLocal).(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}
	claims, ok := token.Claims.(*services.AccessClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// GetUserID extracts the user UUID from the access token subject.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}
