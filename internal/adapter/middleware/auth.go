package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bank-loan-service/internal/domain/user"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const callerKey = "caller"

type TokenParser interface {
	Parse(token string) (user.Caller, error)
}

// UserLookup reloads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*user.User, error)
}

// Authenticate resolves the bearer token into a user.Caller stored on the
// echo context. With a non-nil users the account is reloaded on every request:
// deleted accounts get 401 and the role comes from the stored row, not the
// token.
func Authenticate(p TokenParser, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ah := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(ah, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing token"})
			}
			caller, err := p.Parse(strings.TrimPrefix(ah, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if users != nil {
				u, err := users.GetByID(c.Request().Context(), caller.ID)
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
				case err != nil:
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": "user lookup failed"})
				}
				caller.Role = u.Role
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// RequireRole rejects callers without the given role. Usecases check the role
// again; this only stops the request early.
func RequireRole(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing token"})
			}
			if caller.Role != role {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

func CallerFrom(c echo.Context) (user.Caller, bool) {
	caller, ok := c.Get(callerKey).(user.Caller)
	return caller, ok
}

// WithCaller is used by tests and internal callers to seed an identity.
func WithCaller(c echo.Context, caller user.Caller) { c.Set(callerKey, caller) }
