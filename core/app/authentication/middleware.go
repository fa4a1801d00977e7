package authentication

import (
	"net/http"
	"net/url"
	"strings"

	"realtor/core/router"
	"realtor/core/types"
)

// ContextKey is where RequireSession stores the admin email
const ContextKey = "admin_email"

// RequireSession lets requests with a valid session cookie through. API
// paths are answered with 401, pages are redirected to the login screen.
func RequireSession(service *AuthService) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			if token, err := c.Cookie(CookieName); err == nil {
				if subject, err := service.Verify(token); err == nil {
					c.Set(ContextKey, subject)
					return next(c)
				}
			}

			path := c.Request.URL.Path
			if path == "/api" || strings.HasPrefix(path, "/api/") {
				return c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "Unauthorized"})
			}
			return c.Redirect(http.StatusFound, LoginURL(c.Request.URL))
		}
	}
}

// LoginURL is /login?next=<path and query of u>
func LoginURL(u *url.URL) string {
	next := u.Path
	if u.RawQuery != "" {
		next += "?" + u.RawQuery
	}
	return "/login?next=" + url.QueryEscape(next)
}
