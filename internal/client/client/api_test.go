package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
	"github.com/dmitrijs2005/careercompass/internal/testutil/fakeapi"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubServer answers every request under /api with status and body.
func stubServer(t *testing.T, status int, body string) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/api", tokenstore.NewMemoryStore())
}

func TestLogin_Success(t *testing.T) {
	api := fakeapi.New(t)
	want := api.AddUser("alice", "secret", "alice@example.com")
	c := NewHTTPClient(api.URL(), tokenstore.NewMemoryStore())

	res, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	if diff := cmp.Diff(want, res.User); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, "Invalid credentials"},
		{"detail field", http.StatusUnauthorized, `{"detail":"No active account found"}`, "No active account found"},
		{"error wins over detail", http.StatusBadRequest, `{"detail":"d","error":"e"}`, "e"},
		{"no message", http.StatusBadRequest, `{}`, "Login failed"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubServer(t, tt.status, tt.body)

			_, err := c.Login(context.Background(), "alice", "pw")

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantMsg, authErr.Message)

			var httpErr *HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
		})
	}
}

func TestLogin_MalformedResponse(t *testing.T) {
	c := stubServer(t, http.StatusOK, `{"access":"a","user":{"username":"alice"}}`)

	_, err := c.Login(context.Background(), "alice", "pw")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRegister(t *testing.T) {
	api := fakeapi.New(t)
	api.AddUser("taken", "pw", "taken@example.com")
	c := NewHTTPClient(api.URL(), tokenstore.NewMemoryStore())

	t.Run("success", func(t *testing.T) {
		err := c.Register(context.Background(), models.RegisterRequest{Username: "new", Email: "new@example.com", Password: "pw"})
		require.NoError(t, err)

		_, err = c.Login(context.Background(), "new", "pw")
		assert.NoError(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := c.Register(context.Background(), models.RegisterRequest{Username: "taken", Email: "bad", Password: "pw"})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "A user with that username already exists.", vErr.Message)
		assert.Equal(t, []string{"Enter a valid email address."}, vErr.Fields["email"])
	})

	t.Run("bad email", func(t *testing.T) {
		err := c.Register(context.Background(), models.RegisterRequest{Username: "other", Email: "bad", Password: "pw"})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Enter a valid email address.", vErr.Message)
	})
}

func TestRegister_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantVal bool
	}{
		{"detail on 400", http.StatusBadRequest, `{"detail":"Registration closed"}`, "Registration closed", true},
		{"empty 400", http.StatusBadRequest, `{}`, "Registration failed", true},
		{"server error", http.StatusInternalServerError, `{"error":"db down"}`, "db down", false},
		{"server error without body", http.StatusInternalServerError, ``, "Registration failed", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubServer(t, tt.status, tt.body)

			err := c.Register(context.Background(), models.RegisterRequest{Username: "u", Email: "u@example.com", Password: "pw"})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var vErr *ValidationError
			assert.Equal(t, tt.wantVal, errors.As(err, &vErr))
		})
	}
}

func TestGoogleLogin(t *testing.T) {
	api := fakeapi.New(t)
	user := models.User{ID: 42, Username: "gina", Email: "gina@example.com", FirstName: "Gina"}
	api.AddGoogleCode("good-code", user)
	c := NewHTTPClient(api.URL(), tokenstore.NewMemoryStore())

	res, err := c.GoogleLogin(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, user, res.User)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	// Codes are single use.
	_, err = c.GoogleLogin(context.Background(), "good-code")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Google login failed", authErr.Message)
}

func TestGoogleLogin_NetworkErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url+"/api", tokenstore.NewMemoryStore(), WithTimeout(time.Second))
	_, err := c.GoogleLogin(context.Background(), "code")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestChatHistory_Shapes(t *testing.T) {
	msgs := []models.ChatMessage{{ID: 2, Message: "b"}, {ID: 1, Message: "a"}}
	list, err := json.Marshal(msgs)
	require.NoError(t, err)
	page, err := json.Marshal(map[string]any{"count": 2, "results": msgs})
	require.NoError(t, err)

	for name, body := range map[string]string{"list": string(list), "paginated": string(page)} {
		t.Run(name, func(t *testing.T) {
			c := stubServer(t, http.StatusOK, body)

			got, err := c.ChatHistory(context.Background())
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, int64(2), got[0].ID)
			assert.Equal(t, "a", got[1].Message)
		})
	}

	t.Run("empty body", func(t *testing.T) {
		c := stubServer(t, http.StatusOK, "")

		got, err := c.ChatHistory(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("garbage", func(t *testing.T) {
		c := stubServer(t, http.StatusOK, `"nope"`)

		_, err := c.ChatHistory(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestChat_RoundTrip(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api)

	sent, err := c.SendChatMessage(context.Background(), "What should I study?")
	require.NoError(t, err)
	assert.Equal(t, "What should I study?", sent.Message)
	assert.NotEmpty(t, sent.Response)

	history, err := c.ChatHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, sent.ID, history[0].ID)
}

func TestSearchJobs_DefaultLocation(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api)

	jobs, err := c.SearchJobs(context.Background(), "Data Analyst", "")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Data Analyst", jobs[0].Title)
	assert.Equal(t, DefaultJobLocation, jobs[0].Country)

	jobs, err = c.SearchJobs(context.Background(), "Data Analyst", "Germany")
	require.NoError(t, err)
	assert.Equal(t, "Germany", jobs[0].Country)
}

func TestSearchColleges(t *testing.T) {
	api := fakeapi.New(t)
	c, _, _ := loggedIn(t, api)

	colleges, err := c.SearchColleges(context.Background(), "Design", "Pune")
	require.NoError(t, err)
	require.Len(t, colleges, 1)
	assert.Equal(t, "Pune", colleges[0].Location)
	assert.Contains(t, colleges[0].Name, "Design")
}
