package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunrayos/multi-workspace/internal/auth"
	"github.com/vmunrayos/multi-workspace/internal/auth/handler"
	"github.com/vmunrayos/multi-workspace/internal/session"
)

const allowedOrigin = "http://localhost:4200"

// countingVerifier wraps the demo verifier to observe whether the
// authentication service was reached at all.
type countingVerifier struct {
	inner auth.CredentialVerifier
	calls atomic.Int64
}

func (c *countingVerifier) VerifyOTP(ctx context.Context, phone, otp string) (*session.Record, error) {
	c.calls.Add(1)
	return c.inner.VerifyOTP(ctx, phone, otp)
}

func (c *countingVerifier) VerifyAdmin(ctx context.Context, email, password string) (*session.Record, error) {
	c.calls.Add(1)
	return c.inner.VerifyAdmin(ctx, email, password)
}

func newGateway(t *testing.T) (*httptest.Server, *countingVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	demo, err := auth.NewDemoVerifier()
	require.NoError(t, err)
	verifier := &countingVerifier{inner: demo}

	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := handler.NewHandler(verifier, store, session.CookieOptionsFor(false))
	h.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, verifier
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))
	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoginOTPSuccess(t *testing.T) {
	srv, _ := newGateway(t)
	client := newBrowser(t)

	resp := postJSON(t, client, srv.URL+"/api/authentication/login/otp", map[string]string{
		"phoneNumber": "5551234567",
		"otp":         "246810",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			found = true
			assert.True(t, c.HttpOnly)
			assert.NotEmpty(t, c.Value)
		}
	}
	assert.True(t, found, "login must set the session cookie")

	body := decodeBody(t, resp)
	assert.Equal(t, "OTP login successful.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "user-001", user["id"])
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "5551234567", user["phoneNumber"])

	// The cookie now resolves to the same identity from any frontend.
	me, err := client.Get(srv.URL + "/api/session/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, me.StatusCode)
	record := decodeBody(t, me)
	assert.Equal(t, "user-001", record["id"])
}

func TestLoginOTPInvalidCredentials(t *testing.T) {
	srv, _ := newGateway(t)
	client := newBrowser(t)

	resp := postJSON(t, client, srv.URL+"/api/authentication/login/otp", map[string]string{
		"phoneNumber": "5551234567",
		"otp":         "000000",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies(), "failed login must not set a cookie")

	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid phone number or OTP.", body["message"])
}

func TestLoginAdmin(t *testing.T) {
	srv, _ := newGateway(t)
	client := newBrowser(t)

	// Case-insensitive email.
	resp := postJSON(t, client, srv.URL+"/api/authentication/login/admin", map[string]string{
		"email":    "ADMIN@example.com",
		"password": "SuperSecure123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, "ADMIN@example.com", user["email"])
	_, hasPhone := user["phoneNumber"]
	assert.False(t, hasPhone, "admin record must not carry a phone number")

	resp = postJSON(t, newBrowser(t), srv.URL+"/api/authentication/login/admin", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid admin credentials.", decodeBody(t, resp)["message"])
}

func TestLoginValidation(t *testing.T) {
	srv, verifier := newGateway(t)
	client := newBrowser(t)

	resp := postJSON(t, client, srv.URL+"/api/authentication/login/otp", map[string]string{
		"phoneNumber": "5551234567",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	fields := body["errors"].(map[string]any)
	assert.Equal(t, "is required", fields["otp"])

	resp = postJSON(t, client, srv.URL+"/api/authentication/login/admin", map[string]string{
		"email":    "not-an-email",
		"password": "x",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body = decodeBody(t, resp)
	fields = body["errors"].(map[string]any)
	assert.Equal(t, "must be a valid email address", fields["email"])

	// Validation failures never reach credential comparison.
	assert.EqualValues(t, 0, verifier.calls.Load())
}

func TestCurrentSessionWithoutCookie(t *testing.T) {
	srv, _ := newGateway(t)

	resp, err := newBrowser(t).Get(srv.URL + "/api/session/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "No active session.", decodeBody(t, resp)["message"])
}

func TestCurrentSessionUnknownCookie(t *testing.T) {
	srv, _ := newGateway(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/session/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "bogus"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLogoutIsIdempotent(t *testing.T) {
	srv, _ := newGateway(t)
	client := newBrowser(t)

	// Logout with no session at all.
	resp := postJSON(t, client, srv.URL+"/api/authentication/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Session cleared.", decodeBody(t, resp)["message"])

	// Login, then logout twice.
	resp = postJSON(t, client, srv.URL+"/api/authentication/login/otp", map[string]string{
		"phoneNumber": "5551234567",
		"otp":         "246810",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = postJSON(t, client, srv.URL+"/api/authentication/logout", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	me, err := client.Get(srv.URL + "/api/session/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, me.StatusCode)
	me.Body.Close()
}

func TestTwoLoginsAreIndependentSessions(t *testing.T) {
	srv, _ := newGateway(t)

	first := newBrowser(t)
	second := newBrowser(t)

	for _, client := range []*http.Client{first, second} {
		resp := postJSON(t, client, srv.URL+"/api/authentication/login/otp", map[string]string{
			"phoneNumber": "5551234567",
			"otp":         "246810",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// Logging out one browser must not end the other's session.
	resp := postJSON(t, first, srv.URL+"/api/authentication/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	me, err := second.Get(srv.URL + "/api/session/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, me.StatusCode)
	me.Body.Close()
}

func TestDisallowedOriginRejectedBeforeVerifier(t *testing.T) {
	srv, verifier := newGateway(t)

	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(map[string]string{
		"phoneNumber": "5551234567",
		"otp":         "246810",
	}))
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/authentication/login/otp", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://evil.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.EqualValues(t, 0, verifier.calls.Load())
}

func TestAllowedOriginGetsCredentialedCORSHeaders(t *testing.T) {
	srv, _ := newGateway(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/session/me", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", allowedOrigin)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

// corruptingStore simulates an undecodable stored value.
type corruptingStore struct {
	session.Store
}

func (c *corruptingStore) Get(ctx context.Context, cookieValue string) (*session.Record, error) {
	return nil, session.ErrCorrupt
}

func TestCorruptSessionTreatedAsNoSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	demo, err := auth.NewDemoVerifier()
	require.NoError(t, err)

	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	h := handler.NewHandler(demo, &corruptingStore{Store: store}, session.CookieOptionsFor(false))
	h.RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/session/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "whatever"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
