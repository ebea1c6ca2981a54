package client

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
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
	"github.com/dmitrijs2005/careercompass/internal/common"
	"github.com/dmitrijs2005/careercompass/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	pathLogin       = "/login"
	pathRegister    = "/register"
	pathRefresh     = "/refresh"
	pathGoogleLogin = "/v1/auth/google"

	maxResponseBody = 4 << 20
)

// authPaths never go through the refresh path: a 401 there is a rejected
// credential, not an expired access token.
var authPaths = map[string]struct{}{
	pathLogin:       {},
	pathRegister:    {},
	pathRefresh:     {},
	pathGoogleLogin: {},
}

// HTTPClient talks JSON to the backend. It attaches the stored access token
// to every request and, on a 401, refreshes the token once and retries the
// request once.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	limiter    *rate.Limiter
	validate   *validator.Validate
	log        logging.Logger

	refreshGroup singleflight.Group

	mu               sync.RWMutex
	onSessionExpired func(ctx context.Context)
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// WithTimeout bounds every round trip, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l.With("component", "http-client") }
}

// NewHTTPClient builds a client for the API rooted at baseURL,
// e.g. "http://localhost:8000/api".
func NewHTTPClient(baseURL string, tokens tokenstore.Store, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// Do sends body as JSON and decodes a 2xx response into out (when out is
// not nil). Errors are *NetworkError, *HTTPError or, when the session could
// not be refreshed, *AuthError wrapping ErrSessionExpired.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	token, _ := c.tokens.AccessToken(ctx)
	status, data, err := c.roundTrip(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if _, isAuth := authPaths[path]; !isAuth {
			newToken, err := c.recoverSession(ctx, token, newHTTPError(status, data))
			if err != nil {
				return err
			}
			// The retried request is final: a second 401 is returned as is.
			if status, data, err = c.roundTrip(ctx, method, path, payload, newToken); err != nil {
				return err
			}
		}
	}

	return decodeResponse(status, data, out)
}

// recoverSession returns an access token to retry with. If another request
// already replaced the token that was rejected, that one is reused;
// otherwise the refresh token is exchanged. Without a refresh token the
// session is dropped and unauthorized is returned unchanged.
func (c *HTTPClient) recoverSession(ctx context.Context, rejected string, unauthorized *HTTPError) (string, error) {
	if current, ok := c.tokens.AccessToken(ctx); ok && current != rejected {
		return current, nil
	}

	refresh, ok := c.tokens.RefreshToken(ctx)
	if !ok {
		c.log.Info(ctx, "access token rejected and no refresh token stored")
		c.expireSession(ctx)
		return "", unauthorized
	}

	// Requests that fail together share one refresh call. The shared call
	// must not die with whichever caller started it.
	ch := c.refreshGroup.DoChan(refresh, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), refresh)
	})
	select {
	case <-ctx.Done():
		// The refresh keeps running for the other waiters and still
		// stores its result.
		return "", &NetworkError{Op: http.MethodPost + " " + pathRefresh, Err: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			c.log.Debug(ctx, "joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// refresh exchanges refreshToken for a new access token and stores it. Any
// failure clears the token store and reports the session as expired.
func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) (string, error) {
	res, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		c.log.Warn(ctx, "token refresh failed", "error", err)
		c.expireSession(ctx)
		return "", &AuthError{Message: "Session expired, please log in again", Err: errors.Join(ErrSessionExpired, err)}
	}

	if err := c.tokens.UpdateTokens(ctx, models.TokenPair{AccessToken: res.Access, RefreshToken: res.Refresh}); err != nil {
		c.log.Warn(ctx, "refreshed token not persisted", "error", err)
	}
	c.log.Info(ctx, "access token refreshed")
	return res.Access, nil
}

func (c *HTTPClient) expireSession(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.log.Error(ctx, "token store not cleared", "error", err)
	}

	c.mu.RLock()
	fn := c.onSessionExpired
	c.mu.RUnlock()
	if fn != nil {
		fn(ctx)
	}
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &NetworkError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "op", op, "request_id", requestID, "error", err)
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}

	c.log.Debug(ctx, "request done",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(started),
	)
	return resp.StatusCode, data, nil
}

func newHTTPError(status int, data []byte) *HTTPError {
	body, _ := ParseErrorResponse(data)
	return &HTTPError{Status: status, Body: body}
}

func decodeResponse(status int, data []byte, out any) error {
	if status < 200 || status > 299 {
		return newHTTPError(status, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
