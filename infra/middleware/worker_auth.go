package middleware

import (
	"fmt"
	"strings"

	"event_scraper/pkg/apperr"
	"event_scraper/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by JWTAuth.
const (
	LocalSubject = "subject"
	LocalClaims  = "claims"
)

// JWTAuth validates HS256 bearer tokens signed with secret. Expiry and
// not-before are enforced by the parser; a subject claim is required.
func JWTAuth(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)

	return func(c *fiber.Ctx) error {
		// Skip auth for CORS preflight requests
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		if secret == "" {
			return apperr.Unauthorized("authentication not configured")
		}

		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperr.Unauthorized("missing authorization")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.WithError(err).Warn("JWT validation failed")
			return apperr.InvalidToken("invalid token")
		}

		subject, err := claims.GetSubject()
		if err != nil || subject == "" {
			return apperr.InvalidToken("missing subject in token")
		}

		c.Locals(LocalSubject, subject)
		c.Locals(LocalClaims, claims)

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
