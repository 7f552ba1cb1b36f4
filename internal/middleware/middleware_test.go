package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"whatsfresh/internal/model"
	"whatsfresh/pkg/jwtutil"
	"whatsfresh/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEcho(t *testing.T) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	j := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "middleware-test", ExpirationHours: 1})
	e := echo.New()
	g := e.Group("/entry", EntryAuth(j, "entry_token"))
	g.GET("/vendors", func(c echo.Context) error {
		claims, ok := StaffFromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, claims.Username)
	})
	g.DELETE("/vendors/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e, j
}

func TestEntryAuth(t *testing.T) {
	e, j := newAuthEcho(t)
	staff, err := j.GenerateToken("dax", 1, []string{model.GroupDataEntry})
	require.NoError(t, err)
	visitor, err := j.GenerateToken("quark", 2, []string{"Bar Staff"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		path     string
		cookie   string
		header   string
		xhr      bool
		status   int
		location string
		body     string
	}{
		{name: "no token", method: http.MethodGet, path: "/entry/vendors", status: http.StatusFound, location: "/login?next=/entry/vendors"},
		{name: "garbage token", method: http.MethodGet, path: "/entry/vendors", cookie: "garbage", status: http.StatusFound, location: "/login?next=/entry/vendors"},
		{name: "cookie", method: http.MethodGet, path: "/entry/vendors", cookie: staff, status: http.StatusOK, body: "dax"},
		{name: "bearer header", method: http.MethodGet, path: "/entry/vendors", header: "Bearer " + staff, status: http.StatusOK, body: "dax"},
		{name: "wrong group", method: http.MethodGet, path: "/entry/vendors", cookie: visitor, status: http.StatusForbidden},
		{name: "delete without token", method: http.MethodDelete, path: "/entry/vendors/1", status: http.StatusUnauthorized},
		{name: "ajax without token", method: http.MethodGet, path: "/entry/vendors", xhr: true, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "entry_token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.xhr {
				req.Header.Set(echo.HeaderXRequestedWith, "XMLHttpRequest")
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get(echo.HeaderLocation))
			}
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer abc"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken(""))
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error {
		assert.NotNil(t, logger.FromEcho(c))
		assert.NotNil(t, logger.FromContext(c.Request().Context()))
		return c.String(http.StatusOK, c.Get(logger.RequestIDKey).(string))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(logger.RequestIDKey)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(logger.RequestIDKey, "given-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "given-id", rec.Header().Get(logger.RequestIDKey))
	assert.Equal(t, "given-id", rec.Body.String())
}

func TestMetricsMiddlewarePassesErrors(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware)
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
