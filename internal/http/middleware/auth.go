package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ndavault/internal/config"
	"ndavault/internal/model"
	"ndavault/internal/repository"
)

// InternalTokenHeader carries the shared secret for internal endpoints.
const InternalTokenHeader = "X-Internal-Token"

const userLocalKey = "auth_user"

// UserLoader resolves a token subject to an account.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Auth validates an HS256 bearer token issued by the identity provider, loads
// the account named by its subject and stores it for CurrentUser.
func Auth(cfg config.AuthConfig, users UserLoader, logger *slog.Logger) fiber.Handler {
	logger = logger.With(slog.String("component", "auth"))
	secret := []byte(cfg.JWTSecret)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(c *fiber.Ctx) error {
		if len(secret) == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication is not configured")
		}

		scheme, raw, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, keyFunc, opts...); err != nil {
			logger.DebugContext(c.UserContext(), "token rejected", slog.String("error", err.Error()))
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		if _, err := uuid.Parse(claims.Subject); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token subject")
		}

		u, err := users.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "unknown user")
			}
			logger.ErrorContext(c.UserContext(), "load user failed",
				slog.String("user_id", claims.Subject),
				slog.String("error", err.Error()),
			)
			return fiber.ErrInternalServerError
		}

		SetUser(c, u)
		return c.Next()
	}
}

// SetUser stores the authenticated account for the rest of the chain.
func SetUser(c *fiber.Ctx, u *model.User) {
	c.Locals(userLocalKey, u)
}

// CurrentUser returns the account stored by Auth.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(userLocalKey).(*model.User)
	return u, ok && u != nil
}

// InternalToken guards operator endpoints with a shared secret. An empty
// configured token rejects every request.
func InternalToken(token string) fiber.Handler {
	want := []byte(token)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(InternalTokenHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid internal token")
		}
		return c.Next()
	}
}
