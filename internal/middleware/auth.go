package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"whatsfresh/internal/model"
	"whatsfresh/pkg/jwtutil"
	"whatsfresh/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClaimsKey is the echo context key holding the signed-in staff claims
const ClaimsKey = "staff"

// EntryAuth admits staff users of the entry groups. The token is read from
// the cookie named cookieName or from a Bearer Authorization header.
// Requests without a valid token are sent to the login page.
func EntryAuth(jwtUtil *jwtutil.JWTUtil, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			tokenString := bearerToken(c.Request().Header.Get("Authorization"))
			if tokenString == "" {
				if cookie, err := c.Cookie(cookieName); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				log.Debug("No staff token, redirecting to login")
				return redirectToLogin(c)
			}

			claims, err := jwtUtil.ValidateToken(tokenString)
			if err != nil {
				log.Warn("Invalid or expired staff token", zap.Error(err))
				return redirectToLogin(c)
			}

			if !claims.InAnyGroup(model.GroupAdministration, model.GroupDataEntry) {
				log.Warn("Staff user lacks an entry group",
					zap.String("username", claims.Username),
					zap.Strings("groups", claims.Groups))
				return echo.NewHTTPError(http.StatusForbidden, "You do not have access to the data entry pages.")
			}

			c.Set(ClaimsKey, claims)
			c.Set("logger", log.With(zap.String("staff", claims.Username)))
			return next(c)
		}
	}
}

// StaffFromContext returns the claims stored by EntryAuth
func StaffFromContext(c echo.Context) (*jwtutil.StaffClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*jwtutil.StaffClaims)
	return claims, ok
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func redirectToLogin(c echo.Context) error {
	req := c.Request()
	if req.Method == http.MethodDelete || req.Header.Get("X-Requested-With") != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	next := strings.ReplaceAll(url.QueryEscape(req.URL.Path), "%2F", "/")
	return c.Redirect(http.StatusFound, "/login?next="+next)
}
