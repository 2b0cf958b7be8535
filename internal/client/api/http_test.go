package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL, 2*time.Second, "test-client")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCurrentUser_ParsesAccount(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "test-client", r.Header.Get("X-Client-ID"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"alice@example.com","first_name":"Alice","last_name":"Doe","is_verified":true,"credits":7}`))
	}))

	acct, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", acct.Email)
	assert.True(t, acct.Verified)
	assert.Equal(t, 7, acct.Credits)
}

func TestCurrentUser_401MapsToUnauthenticated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUser_5xxMapsToUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.CurrentUser(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLogin_CookieCarriedToSubsequentCalls(t *testing.T) {
	var sawCookie bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s3cret", HttpOnly: true})
			w.Write([]byte(`{"email":"bob@example.com","credits":2}`))
		case "/users/me":
			if ck, err := r.Cookie("session"); err == nil && ck.Value == "s3cret" {
				sawCookie = true
			}
			w.Write([]byte(`{"email":"bob@example.com","is_verified":false,"credits":2}`))
		}
	}))

	res, err := c.Login(context.Background(), "bob@example.com", []byte("pw"))
	require.NoError(t, err)
	assert.False(t, res.VerifiedKnown, "is_verified was omitted in the login body")

	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.True(t, sawCookie, "session cookie from /login must ride along on /users/me")
}

func TestLogin_VerifiedKnownWhenPresent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"bob@example.com","is_verified":true,"credits":2}`))
	}))

	res, err := c.Login(context.Background(), "bob@example.com", []byte("pw"))
	require.NoError(t, err)
	assert.True(t, res.VerifiedKnown)
	assert.True(t, res.Account.Verified)
}

func TestAnalyze_ExtractsCreditsLeftAndKeepsBody(t *testing.T) {
	raw := `{"ticker":"AAPL","score":82,"summary":"strong","credits_left":4}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze/AAPL", r.URL.Path)
		w.Write([]byte(raw))
	}))

	res, err := c.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Ticker)
	require.NotNil(t, res.CreditsLeft)
	assert.Equal(t, 4, *res.CreditsLeft)
	assert.JSONEq(t, raw, string(res.Body))
}

func TestAnalyze_AnonymousResponseHasNoCreditsLeft(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ticker":"AAPL","score":82}`))
	}))

	res, err := c.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, res.CreditsLeft)
}

func TestAnalyze_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"payment required", http.StatusPaymentRequired, `{}`, ErrPaymentRequired},
		{"verification marker", http.StatusForbidden, `{"detail":"verification_required"}`, ErrVerificationRequired},
		{"verify wording", http.StatusForbidden, `{"detail":"please verify your email"}`, ErrVerificationRequired},
		{"anonymous forbidden", http.StatusForbidden, `{"detail":"trial exhausted"}`, ErrLoginRequired},
		{"expired cookie", http.StatusUnauthorized, ``, ErrUnauthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))

			_, err := c.Analyze(context.Background(), "AAPL")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnalyze_TimeoutMapsToErrTimeout(t *testing.T) {
	block := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c, err := NewHTTPClient(srv.URL, 50*time.Millisecond, "test-client")
	require.NoError(t, err)

	_, err = c.Analyze(context.Background(), "AAPL")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestCompare_BuildsPairPathAndTicker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compare/AAPL/MSFT", r.URL.Path)
		w.Write([]byte(`{"credits_left":1}`))
	}))

	res, err := c.Compare(context.Background(), "AAPL", "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "AAPL+MSFT", res.Ticker)
}

func TestVerifyLicense_ParsesResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify-license", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"valid":true,"credits":25}`))
	}))

	res, err := c.VerifyLicense(context.Background(), "ABC-123")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 25, res.Credits)
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient("", time.Second, "")
	require.Error(t, err)
}
