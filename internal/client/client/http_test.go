package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
	"github.com/dmitrijs2005/careercompass/internal/testutil/fakeapi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loggedIn returns a client whose store holds a valid session for a fresh
// user of api.
func loggedIn(t *testing.T, api *fakeapi.Server, opts ...Option) (*HTTPClient, *tokenstore.MemoryStore, models.TokenPair) {
	t.Helper()

	user := api.AddUser("alice", "secret", "alice@example.com")
	pair := api.IssueTokens(t, user)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), pair, user))

	return NewHTTPClient(api.URL(), store, opts...), store, pair
}

func TestHTTPClient_AttachesBearerToken(t *testing.T) {
	api := fakeapi.New(t)
	c, _, pair := loggedIn(t, api)

	_, err := c.SendChatMessage(context.Background(), "hello")
	require.NoError(t, err)
	_, err = c.ChatHistory(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer " + pair.AccessToken, "Bearer " + pair.AccessToken}, api.Authorizations())
	assert.Zero(t, api.RefreshCalls())
}

func TestHTTPClient_SetsRequestID(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api)

	_, err := c.SendChatMessage(context.Background(), "one")
	require.NoError(t, err)
	_, err = c.SendChatMessage(context.Background(), "two")
	require.NoError(t, err)

	ids := api.RequestIDs()
	require.Len(t, ids, 2)
	for _, id := range ids {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "request id %q", id)
	}
	assert.NotEqual(t, ids[0], ids[1])
}

func TestHTTPClient_NoTokenSendsNoAuthorization(t *testing.T) {
	api := fakeapi.New(t)
	c := NewHTTPClient(api.URL(), tokenstore.NewMemoryStore())

	_, err := c.SendChatMessage(context.Background(), "hello")
	require.Error(t, err)

	assert.Equal(t, []string{""}, api.Authorizations())
}

func TestHTTPClient_RefreshOnceThenRetry(t *testing.T) {
	api := fakeapi.New(t)
	c, store, pair := loggedIn(t, api)

	api.ExpireAccessTokens()

	msg, err := c.SendChatMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Message)

	assert.Equal(t, 1, api.RefreshCalls())

	auths := api.Authorizations()
	require.Len(t, auths, 2)
	assert.Equal(t, "Bearer "+pair.AccessToken, auths[0])

	newAccess, ok := store.AccessToken(context.Background())
	require.True(t, ok)
	assert.NotEqual(t, pair.AccessToken, newAccess)
	assert.Equal(t, "Bearer "+newAccess, auths[1])

	// Without rotation the refresh token is kept.
	refresh, ok := store.RefreshToken(context.Background())
	require.True(t, ok)
	assert.Equal(t, pair.RefreshToken, refresh)
}

func TestHTTPClient_PersistsRotatedRefreshToken(t *testing.T) {
	api := fakeapi.New(t, fakeapi.WithRefreshRotation())
	c, store, pair := loggedIn(t, api)

	api.ExpireAccessTokens()

	_, err := c.ChatHistory(context.Background())
	require.NoError(t, err)

	refresh, ok := store.RefreshToken(context.Background())
	require.True(t, ok)
	assert.NotEqual(t, pair.RefreshToken, refresh)
}

func TestHTTPClient_FailedRefreshExpiresSession(t *testing.T) {
	for name, breakRefresh := range map[string]func(*fakeapi.Server){
		"server error":    func(s *fakeapi.Server) { s.FailRefresh(true) },
		"revoked refresh": func(s *fakeapi.Server) { s.RevokeRefreshTokens() },
	} {
		t.Run(name, func(t *testing.T) {
			api := fakeapi.New(t)
			c, store, _ := loggedIn(t, api)

			var expired atomic.Int32
			c.OnSessionExpired(func(context.Context) { expired.Add(1) })

			api.ExpireAccessTokens()
			breakRefresh(api)

			_, err := c.SendChatMessage(context.Background(), "hello")
			require.Error(t, err)

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.ErrorIs(t, err, ErrSessionExpired)
			assert.Equal(t, 1, api.RefreshCalls())
			assert.Equal(t, int32(1), expired.Load())

			_, ok := store.AccessToken(context.Background())
			assert.False(t, ok)
			_, ok = store.RefreshToken(context.Background())
			assert.False(t, ok)
			_, ok = store.User(context.Background())
			assert.False(t, ok)

			// Only the original request reached the protected endpoint.
			assert.Len(t, api.Authorizations(), 1)
		})
	}
}

func TestHTTPClient_NoRefreshTokenReturnsUnauthorized(t *testing.T) {
	api := fakeapi.New(t)
	user := api.AddUser("alice", "secret", "alice@example.com")
	pair := api.IssueTokens(t, user)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.TokenPair{AccessToken: pair.AccessToken}, user))

	c := NewHTTPClient(api.URL(), store)
	var expired atomic.Int32
	c.OnSessionExpired(func(context.Context) { expired.Add(1) })

	api.ExpireAccessTokens()

	_, err := c.SendChatMessage(context.Background(), "hello")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, api.RefreshCalls())
	assert.Equal(t, int32(1), expired.Load())

	_, ok := store.AccessToken(context.Background())
	assert.False(t, ok)
}

func TestHTTPClient_SecondUnauthorizedIsFinal(t *testing.T) {
	var chatCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		chatCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		n := refreshCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"fresh-` + string(rune('0'+n)) + `"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.TokenPair{AccessToken: "stale", RefreshToken: "r"}, models.User{Username: "alice"}))

	c := NewHTTPClient(srv.URL+"/api", store)
	_, err := c.SendChatMessage(context.Background(), "hello")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	assert.Equal(t, "nope", httpErr.Body.Detail)

	assert.Equal(t, int32(2), chatCalls.Load())
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestHTTPClient_AuthEndpointsNeverRefresh(t *testing.T) {
	api := fakeapi.New(t)
	c, store, _ := loggedIn(t, api)

	_, err := c.Login(context.Background(), "alice", "wrong")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Invalid credentials", authErr.Message)
	assert.Zero(t, api.RefreshCalls())

	// A rejected login does not touch the stored session.
	_, ok := store.AccessToken(context.Background())
	assert.True(t, ok)
}

func TestHTTPClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := fakeapi.New(t, fakeapi.WithRefreshDelay(100*time.Millisecond))
	c, _, _ := loggedIn(t, api)

	api.ExpireAccessTokens()

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.ChatHistory(context.Background())
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, api.RefreshCalls())
}

func TestHTTPClient_CancelWhileWaitingForRefresh(t *testing.T) {
	api := fakeapi.New(t, fakeapi.WithRefreshDelay(time.Second))
	c, store, pair := loggedIn(t, api)

	api.ExpireAccessTokens()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := c.ChatHistory(ctx)
	elapsed := time.Since(started)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 500*time.Millisecond)

	// The abandoned refresh still completes and is stored.
	require.Eventually(t, func() bool {
		access, ok := store.AccessToken(context.Background())
		return ok && access != pair.AccessToken
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, api.RefreshCalls())
}

func TestHTTPClient_OtherErrorsPassThrough(t *testing.T) {
	var refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	})
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.TokenPair{AccessToken: "a", RefreshToken: "r"}, models.User{Username: "alice"}))

	c := NewHTTPClient(srv.URL+"/api", store)
	_, err := c.ChatHistory(context.Background())

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, "boom", httpErr.Body.Detail)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, refreshCalls.Load())

	_, ok := store.AccessToken(context.Background())
	assert.True(t, ok)
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url+"/api", tokenstore.NewMemoryStore(), WithTimeout(time.Second))
	_, err := c.ChatHistory(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "GET /chat/history", netErr.Op)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_CancelledContext(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ChatHistory(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestHTTPClient_RateLimitWaitHonoursContext(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api, WithRateLimit(0.001, 1))

	_, err := c.ChatHistory(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.ChatHistory(ctx)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Len(t, api.Authorizations(), 1)
}
