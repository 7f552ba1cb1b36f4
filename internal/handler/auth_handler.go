package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"whatsfresh/internal/account"
	"whatsfresh/pkg/logger"
	"whatsfresh/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const defaultNext = "/entry"

// LoginForm handles GET /login
func (h *Handler) LoginForm(c echo.Context) error {
	return h.renderLogin(c, http.StatusOK, "", safeNext(c.QueryParam("next")), nil)
}

// Login handles POST /login. A valid sign-in stores a staff token in a
// cookie and continues to next.
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)

	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	next := safeNext(c.FormValue("next"))

	user, err := h.accounts.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			prometheus.RecordLoginAttempt("rejected")
			log.Info("Login rejected", zap.String("username", username))
			return h.renderLogin(c, http.StatusOK, username, next,
				[]string{"Please enter a correct username and password. Note that both fields may be case-sensitive."})
		}
		log.Error("Login failed", zap.String("username", username), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "The request could not be completed.")
	}

	token, err := h.jwt.GenerateToken(user.Username, user.ID, user.GroupNames())
	if err != nil {
		log.Error("Failed to issue staff token", zap.String("username", username), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "The request could not be completed.")
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.jwt.Expiration()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	prometheus.RecordLoginAttempt("accepted")
	log.Info("Staff user signed in", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return c.Redirect(http.StatusFound, next)
}

// Logout handles GET /logout
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) renderLogin(c echo.Context, status int, username, next string, errs []string) error {
	data := h.page(c, "Sign in", nil)
	data["Username"] = username
	data["Next"] = next
	data["Errors"] = errs
	return c.Render(status, "login.html", data)
}

// safeNext keeps redirects after sign-in on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return defaultNext
	}
	return next
}
