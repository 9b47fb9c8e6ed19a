// Package apiclient executes authenticated requests against the Dojo REST API.
//
// Every response is normalized into the models package's canonical shapes
// before it is returned, so callers never see wire-format variations.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/dalemusser/dojo/internal/app/system/inputval"
	"github.com/dalemusser/dojo/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxBody bounds how much of a response body is read.
const maxBody = 4 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the absolute http(s) URL all endpoint paths are joined to.
	BaseURL string
	// HTTPClient is the underlying client. Its transport is wrapped; the
	// value itself is not modified. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	Log        *zap.Logger
	// FeedbackAuth sends the bearer token on the feedback endpoint too.
	FeedbackAuth bool
}

// Client is the API gateway. It is safe for concurrent use.
type Client struct {
	base         string
	hc           *http.Client
	log          *zap.Logger
	feedbackAuth bool

	mu    sync.RWMutex
	token string
}

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	if !inputval.IsValidHTTPURL(opts.BaseURL) {
		return nil, fmt.Errorf("apiclient: base URL %q must be an absolute http(s) URL", opts.BaseURL)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	src := opts.HTTPClient
	if src == nil {
		src = http.DefaultClient
	}
	rt := src.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	hc := *src
	hc.Transport = &tracingTransport{base: rt, log: log}

	return &Client{
		base:         strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		hc:           &hc,
		log:          log,
		feedbackAuth: opts.FeedbackAuth,
	}, nil
}

// SetToken sets (or, with "", clears) the bearer token sent with requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// HasToken reports whether a bearer token is set.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Request performs one JSON call and returns the raw response body.
// body may be nil. The bearer token is attached when one is set.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any) ([]byte, error) {
	return c.do(ctx, method, endpoint, body, true)
}

func (c *Client) do(ctx context.Context, method, path string, body any, withAuth bool) ([]byte, error) {
	op := method + " " + path
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Request(), c.log, op)
	defer cancel()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode %s: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); withAuth && tok != "" {
		(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &RequestError{Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &RequestError{Status: resp.StatusCode, Message: FallbackMessage, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, classify(resp.StatusCode, data)
}

func classify(status int, body []byte) error {
	msg, fields := parseDetail(body)
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Status: status, Message: nonEmpty(msg)}
	case len(fields) > 0:
		return &ValidationError{Fields: fields, Message: nonEmpty(msg)}
	default:
		return &RequestError{Status: status, Message: nonEmpty(msg)}
	}
}

// Login exchanges credentials for an access token. The exchange is a
// form-encoded password grant with fields username and password.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Login(), c.log, "POST /auth/login")
	defer cancel()

	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.base + "/auth/login",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	tok, err := cfg.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.hc), email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			msg, _ := parseDetail(re.Body)
			if msg == "" {
				msg = LoginFallback
			}
			status := 0
			if re.Response != nil {
				status = re.Response.StatusCode
			}
			return "", &AuthError{Status: status, Message: msg, Err: err}
		}
		return "", &AuthError{Message: LoginFallback, Err: err}
	}
	return tok.AccessToken, nil
}
