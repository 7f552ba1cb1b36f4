package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"whatsfresh/internal/middleware"
	"whatsfresh/internal/model"
	"whatsfresh/internal/testutil"
	"whatsfresh/internal/view"
	"whatsfresh/pkg/blob"
	"whatsfresh/pkg/geocode"
	"whatsfresh/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCookie = "entry_token"

type testServer struct {
	e        *echo.Echo
	db       *gorm.DB
	geocoder *testutil.FakeGeocoder
	blobs    *blob.Memory
	jwt      *jwtutil.JWTUtil
	staff    *http.Cookie
}

func newTestServer(t *testing.T, seed bool) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	if seed {
		testutil.Seed(t, db)
	}

	renderer, err := view.New()
	require.NoError(t, err)

	ts := &testServer{
		e:        echo.New(),
		db:       db,
		geocoder: &testutil.FakeGeocoder{Point: geocode.Point{Lat: 44.6365, Lon: -124.0531}},
		blobs:    blob.NewMemory(),
		jwt:      jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1}),
	}
	ts.e.Renderer = renderer

	h := New(Options{
		DB:         db,
		Geocoder:   ts.geocoder,
		Blobs:      ts.blobs,
		JWT:        ts.jwt,
		CookieName: testCookie,
		PageLength: 20,
	})
	h.Register(ts.e, middleware.EntryAuth(ts.jwt, testCookie))

	token, err := ts.jwt.GenerateToken("temporary", 1, []string{model.GroupAdministration})
	require.NoError(t, err)
	ts.staff = &http.Cookie{Name: testCookie, Value: token}
	return ts
}

func (ts *testServer) do(req *http.Request, signedIn bool) *httptest.ResponseRecorder {
	if signedIn {
		req.AddCookie(ts.staff)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string, signedIn bool) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil), signedIn)
}

func (ts *testServer) delete(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodDelete, path, nil), true)
}

func (ts *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.postBody(path, echo.MIMEApplicationForm, strings.NewReader(form.Encode()))
}

func (ts *testServer) postBody(path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	return ts.do(req, true)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
