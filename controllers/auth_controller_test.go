package controllers

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRememberLoginContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/remember-login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRememberLoginRequiresToken(t *testing.T) {
	ac := &AuthController{logger: log.New(io.Discard, "", 0)}

	c, rec := newRememberLoginContext(t, `{}`)
	require.NoError(t, ac.RememberLogin(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newRememberLoginContext(t, `{"rememberMeToken":""}`)
	require.NoError(t, ac.RememberLogin(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRememberLoginUnavailableWithoutRedis(t *testing.T) {
	ac := &AuthController{logger: log.New(io.Discard, "", 0)}

	c, rec := newRememberLoginContext(t, `{"rememberMeToken":"some-token"}`)
	require.NoError(t, ac.RememberLogin(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
