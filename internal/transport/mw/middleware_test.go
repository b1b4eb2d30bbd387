package mw_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"vn.io.terango/notifier/internal/transport/mw"
)

const secret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func invoke(t *testing.T, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw.JWTAuth(secret)(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("userID").(string))
	})
	return rec, handler(c)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":  "op-1",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, secret)

	rec, err := invoke(t, "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Body.String() != "op-1" {
		t.Fatalf("userID = %q, want op-1", rec.Body.String())
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	_, err := invoke(t, "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTAuth_WrongKeyRejected(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "op-1"}, "other-secret")

	_, err := invoke(t, "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestJWTAuth_MissingSubjectRejected(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"role": "ADMIN"}, secret)

	_, err := invoke(t, "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
