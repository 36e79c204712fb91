package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID      = "user_id"
	LocalCuratedMode = "curated_mode"

	// claimFeatures lists the feature flags granted to the token holder
	claimFeatures    = "features"
	featureCuratedKB = "curated_kb"
)

// JwtMiddleware verifies HS256 bearer tokens and exposes the user id and the
// curated knowledge-base feature flag as locals.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}
		userId, ok := claims[LocalUserID].(string)
		if !ok || userId == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		ctx.Locals(LocalUserID, userId)
		ctx.Locals(LocalCuratedMode, hasFeature(claims, featureCuratedKB))
		return ctx.Next()
	}
}

func hasFeature(claims jwt.MapClaims, feature string) bool {
	features, ok := claims[claimFeatures].([]interface{})
	if !ok {
		return false
	}
	for _, f := range features {
		if s, ok := f.(string); ok && s == feature {
			return true
		}
	}
	return false
}
