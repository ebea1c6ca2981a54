// Package fakeapi is an in-process stand-in for the CareerCompass REST API.
// Tests point the HTTP client at it to exercise login, token refresh and the
// protected endpoints end to end.
package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/common"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type account struct {
	user     models.User
	password string
}

// Server serves the API under /api.
type Server struct {
	srv    *httptest.Server
	issuer *issuer

	mu              sync.Mutex
	accounts        map[string]account
	googleCodes     map[string]models.User
	nextID          int64
	history         map[int64][]models.ChatMessage
	rotateRefresh   bool
	failRefresh     bool
	refreshCalls    int
	authorizations  []string
	requestIDs      []string
	minAccessGen    int
	minRefreshGen   int
	generation      int
	refreshDelay    time.Duration
	refreshReceived chan struct{}
}

type Option func(*Server)

// WithAccessTTL sets the lifetime of issued access tokens.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) { s.issuer.accessTTL = d }
}

// WithRefreshRotation makes /refresh return a new refresh token as well.
func WithRefreshRotation() Option {
	return func(s *Server) { s.rotateRefresh = true }
}

// WithRefreshDelay holds every /refresh response for d.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Server) { s.refreshDelay = d }
}

// New starts a server and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		issuer:      newIssuer(common.GenerateRandByteArray(32), time.Hour, 24*time.Hour),
		accounts:    make(map[string]account),
		googleCodes: make(map[string]models.User),
		history:     make(map[int64][]models.ChatMessage),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, ending in /api.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.recordRequest)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/refresh", s.refresh)
		r.Post("/v1/auth/google", s.googleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAccess)
			r.Post("/chat", s.chat)
			r.Get("/chat/history", s.chatHistory)
			r.Post("/jobs/search", s.searchJobs)
			r.Post("/colleges/search", s.searchColleges)
		})
	})
	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password, email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, email)
}

func (s *Server) addUserLocked(username, password, email string) models.User {
	s.nextID++
	u := models.User{ID: s.nextID, Username: username, Email: email}
	s.accounts[username] = account{user: u, password: password}
	return u
}

// AddGoogleCode makes code exchangeable at /v1/auth/google for user.
func (s *Server) AddGoogleCode(code string, user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.googleCodes[code] = user
}

// IssueTokens returns a fresh valid pair for user.
func (s *Server) IssueTokens(t testing.TB, user models.User) models.TokenPair {
	t.Helper()

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	pair, err := s.issuer.pair(user.ID, gen)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return pair
}

// ExpireAccessTokens invalidates every access token issued so far.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.minAccessGen = s.generation
}

// RevokeRefreshTokens invalidates every refresh token issued so far. Access
// tokens are revoked too.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.minAccessGen = s.generation
	s.minRefreshGen = s.generation
}

// FailRefresh makes /refresh answer 500.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// RefreshReceived returns a channel that gets a value each time /refresh is
// hit, before the response is written.
func (s *Server) RefreshReceived() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refreshReceived == nil {
		s.refreshReceived = make(chan struct{}, 16)
	}
	return s.refreshReceived
}

func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// Authorizations lists the Authorization headers seen on protected
// endpoints, in order.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authorizations...)
}

// RequestIDs lists the X-Request-ID headers of every request, in order.
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, r.Header.Get(common.RequestIDHeaderName))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)

		s.mu.Lock()
		s.authorizations = append(s.authorizations, header)
		minGen := s.minAccessGen
		s.mu.Unlock()

		raw, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}
		claims, err := s.issuer.parse(raw, tokenTypeAccess, minGen)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, claims.UserID)))
	})
}

type userIDKey struct{}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey{}).(int64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return false
	}
	return true
}
