// Package sessionclient is the contract every frontend uses to consume
// the shared session. It issues credentialed requests to the gateway,
// treats 401 on the current-session read as "not logged in" rather
// than an error, and keeps a non-authoritative cache of the last known
// record. Presentation code must never read or write the session
// cookie directly.
package sessionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v4"
)

const defaultTimeout = 10 * time.Second

// Config tunes a Client. The zero value is valid.
type Config struct {
	// RetryAttempts is the number of extra attempts for requests that
	// fail at the transport level (connection refused, timeout). HTTP
	// statuses, including 401, are never retried. Default: 0, no
	// retries.
	RetryAttempts int

	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration

	// HTTPClient overrides the underlying client. It must carry a
	// cookie jar, otherwise the session cookie is lost between calls.
	HTTPClient *http.Client
}

// Client is the per-frontend session client.
type Client struct {
	baseURL       string
	http          *http.Client
	retryAttempts int

	mu      sync.RWMutex
	current *Record

	// busy rejects re-entrant login/logout: a duplicate in-flight
	// login would mint a second session, a duplicate logout races the
	// cookie clear.
	busy atomic.Bool
}

func New(baseURL string, cfg Config) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("sessionclient: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("sessionclient: cookie jar: %w", err)
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Jar:     jar,
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          httpClient,
		retryAttempts: cfg.RetryAttempts,
	}, nil
}

// GetSession fetches the current session from the gateway. A 401 is
// the canonical "not logged in" signal and resolves to (nil, nil).
// The result, including absence, replaces the cached snapshot.
func (c *Client) GetSession(ctx context.Context) (*Record, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/session/me", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var record Record
		if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		c.setCurrent(&record)
		return &record, nil

	case http.StatusUnauthorized:
		c.setCurrent(nil)
		return nil, nil

	default:
		return nil, unexpectedStatus(resp)
	}
}

// LoginOTP authenticates with the phone number / OTP pair.
func (c *Client) LoginOTP(ctx context.Context, phoneNumber, otp string) (*Record, error) {
	return c.login(ctx, "/api/authentication/login/otp", map[string]string{
		"phoneNumber": phoneNumber,
		"otp":         otp,
	})
}

// LoginAdmin authenticates with the admin email/password pair.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (*Record, error) {
	return c.login(ctx, "/api/authentication/login/admin", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) login(ctx context.Context, path string, payload map[string]string) (*Record, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrOperationInFlight
	}
	defer c.busy.Store(false)

	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			User    Record `json:"user"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		c.setCurrent(&body.User)
		return &body.User, nil

	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, messageOf(resp))

	case http.StatusUnprocessableEntity:
		var body struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		return nil, &ValidationError{Fields: body.Errors}

	default:
		return nil, unexpectedStatus(resp)
	}
}

// Logout destroys the gateway session and drops the cached record.
// Safe to call with no active session.
func (c *Client) Logout(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrOperationInFlight
	}
	defer c.busy.Store(false)

	resp, err := c.do(ctx, http.MethodPost, "/api/authentication/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(resp)
	}

	c.setCurrent(nil)
	return nil
}

// Snapshot returns the last record seen by this client. It exists only
// to avoid redundant renders; call GetSession at least once per
// frontend load before trusting it.
func (c *Client) Snapshot() *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	r := *c.current
	return &r
}

func (c *Client) setCurrent(r *Record) {
	c.mu.Lock()
	c.current = r
	c.mu.Unlock()
}

// do performs one credentialed request, rebuilding it per attempt so
// retries get a fresh body. Only transport failures are retried.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("sessionclient: encode request: %w", err)
		}
	}

	var resp *http.Response
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		r, err := c.http.Do(req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	var err error
	if c.retryAttempts > 0 {
		err = retry.Do(
			attempt,
			retry.Attempts(uint(c.retryAttempts)+1),
			retry.Context(ctx),
			retry.LastErrorOnly(true),
		)
	} else {
		err = attempt()
	}
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return resp, nil
}

func unexpectedStatus(resp *http.Response) error {
	return &TransportError{
		StatusCode: resp.StatusCode,
		Message:    messageOf(resp),
	}
}

func messageOf(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return ""
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}
