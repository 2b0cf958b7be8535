package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// verificationMarker is the detail string the backend puts into a 403 body
// when the account merely lacks email verification.
const verificationMarker = "verification_required"

// HTTPClient talks to the TickerLens backend over REST. The cookie jar
// carries the HTTP-only session cookie between calls.
type HTTPClient struct {
	baseURL  string
	clientID string
	hc       *http.Client
}

// NewHTTPClient builds a client for the given base URL. The timeout bounds
// every request; clientID is a stable per-install identifier sent with each
// call for server-side correlation.
func NewHTTPClient(baseURL string, timeout time.Duration, clientID string) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar init: %w", err)
	}

	return &HTTPClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		clientID: clientID,
		hc: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// CurrentUser performs the credential check against GET /users/me.
func (c *HTTPClient) CurrentUser(ctx context.Context) (*Account, error) {
	body, err := c.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}

	var acct Account
	if err := json.Unmarshal(body, &acct); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &acct, nil
}

// Login posts credentials to establish the session cookie. The response
// body is an account document that may omit is_verified.
func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: string(password)}

	body, err := c.do(ctx, http.MethodPost, "/login", req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Verified  *bool  `json:"is_verified"`
		Credits   int    `json:"credits"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	res := &LoginResult{
		Account: Account{
			Email:     resp.Email,
			FirstName: resp.FirstName,
			LastName:  resp.LastName,
			Credits:   resp.Credits,
		},
		VerifiedKnown: resp.Verified != nil,
	}
	if resp.Verified != nil {
		res.Account.Verified = *resp.Verified
	}
	return res, nil
}

// Logout requests server-side session invalidation. Callers treat it as
// best effort: local state resets regardless of the outcome.
func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil)
	return err
}

// Analyze fetches a fresh analysis for one ticker. Metered.
func (c *HTTPClient) Analyze(ctx context.Context, ticker string) (*AnalysisResult, error) {
	body, err := c.do(ctx, http.MethodGet, "/analyze/"+url.PathEscape(ticker), nil)
	if err != nil {
		return nil, err
	}
	return newAnalysisResult(ticker, body), nil
}

// Compare fetches a head-to-head analysis of two tickers. Metered at
// double cost server-side.
func (c *HTTPClient) Compare(ctx context.Context, tickerA, tickerB string) (*AnalysisResult, error) {
	path := "/compare/" + url.PathEscape(tickerA) + "/" + url.PathEscape(tickerB)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return newAnalysisResult(tickerA+"+"+tickerB, body), nil
}

// VerifyLicense redeems a license key for credits.
func (c *HTTPClient) VerifyLicense(ctx context.Context, key string) (*LicenseResult, error) {
	req := struct {
		Key string `json:"key"`
	}{Key: key}

	body, err := c.do(ctx, http.MethodPost, "/verify-license", req)
	if err != nil {
		return nil, err
	}

	var res LicenseResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode license response: %w", err)
	}
	return &res, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

func newAnalysisResult(ticker string, body []byte) *AnalysisResult {
	res := &AnalysisResult{Ticker: ticker, Body: body}

	var meta struct {
		CreditsLeft *int `json:"credits_left"`
	}
	// credits_left is absent for anonymous callers; a decode failure of the
	// envelope never invalidates the (already 200) payload itself.
	if err := json.Unmarshal(body, &meta); err == nil {
		res.CreditsLeft = meta.CreditsLeft
	}
	return res
}

// do performs one request and returns the response body on 2xx, or a
// sentinel error mapped from the transport failure or status code.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapTransportError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, mapStatus(resp.StatusCode, body)
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func mapStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusPaymentRequired:
		return ErrPaymentRequired
	case status == http.StatusForbidden:
		detail := gjson.GetBytes(body, "detail").String()
		if strings.Contains(detail, verificationMarker) || strings.Contains(detail, "verify your email") {
			return ErrVerificationRequired
		}
		return ErrLoginRequired
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	default:
		return fmt.Errorf("unexpected status %d: %s", status, strings.TrimSpace(string(body)))
	}
}
