package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kenechi-dev/gighall/internal/apperr"
)

// RequireRoles refuses callers whose stored role is not one of the allowed
// roles. It runs after JWTAuth, so an empty role means the identity was never
// resolved. Refusals go through the apperr taxonomy like every other handler
// in the module.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			err := apperr.Forbiddenf("requires role %s", strings.Join(roles, " or "))
			return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
	}
}
