// Package middleware provides authentication, rate limiting, and request
// instrumentation middleware for the HTTP surface.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"sellerhood/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RevokedCheckFunc reports whether a session has been revoked: either the
// token ID itself was denylisted, or the account signed out everywhere after
// the token was issued.
type RevokedCheckFunc func(userID uint, jti string, issuedAt time.Time) bool

var (
	cfg          *config.Config
	revokedCheck RevokedCheckFunc
)

// InitMiddleware wires the auth middleware to the application config and the
// revocation check. checkRevoked may be nil; tokens then live until expiry.
func InitMiddleware(c *config.Config, checkRevoked RevokedCheckFunc) {
	cfg = c
	revokedCheck = checkRevoked
}

// tokenIdentity is what a validated bearer token asserts.
type tokenIdentity struct {
	UserID    uint
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// parseToken validates a bearer token and extracts its identity claims.
func parseToken(tokenString string) (tokenIdentity, error) {
	var ident tokenIdentity

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ident, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ident, fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return ident, fiber.NewError(fiber.StatusUnauthorized, "missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return ident, fiber.NewError(fiber.StatusUnauthorized, "invalid subject")
	}

	ident.UserID = uint(userID)
	ident.JTI, _ = claims["jti"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		ident.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ident.ExpiresAt = exp.Time
	}
	return ident, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired enforces authentication for protected routes. On success the
// user ID and token ID land in c.Locals under "userID" and "jti".
func AuthRequired(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "로그인이 필요합니다.",
			"code":  "UNAUTHORIZED",
		})
	}

	ident, err := parseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "세션이 만료되었습니다. 다시 로그인해주세요.",
			"code":  "UNAUTHORIZED",
		})
	}
	if revokedCheck != nil && revokedCheck(ident.UserID, ident.JTI, ident.IssuedAt) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "세션이 만료되었습니다. 다시 로그인해주세요.",
			"code":  "UNAUTHORIZED",
		})
	}

	storeIdentity(c, ident)
	return c.Next()
}

func storeIdentity(c *fiber.Ctx, ident tokenIdentity) {
	c.Locals("userID", ident.UserID)
	c.Locals("jti", ident.JTI)
	c.Locals("tokenExp", ident.ExpiresAt)
}

// OptionalAuth resolves the caller's identity when a valid token is present
// but never rejects the request. Anonymous reads (post lists, like status)
// run through this: a missing or bad token just means userID stays unset.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}

	ident, err := parseToken(tokenString)
	if err != nil {
		return c.Next()
	}
	if revokedCheck != nil && revokedCheck(ident.UserID, ident.JTI, ident.IssuedAt) {
		return c.Next()
	}

	storeIdentity(c, ident)
	return c.Next()
}
