package middleware

// identity.go holds helpers shared across middleware files.  The rate
// limiter keys buckets per user; the user id was stored in the context
// by JWTAuth as the raw JWT claim value, which json decodes numbers as
// float64.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a stable string identifier for the
// authenticated user, or "anon" for unauthenticated requests.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v != "" {
			return v
		}
		return "anon"
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
