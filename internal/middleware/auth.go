// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strconv"

	"campusboard/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ParseUserID validates a bearer token string and extracts the user ID from
// its "sub" claim. Tokens from other issuers are rejected even when the
// signature checks out.
func ParseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "campusboard-api" {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token issuer")
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject type")
	}

	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(userID), nil
}
