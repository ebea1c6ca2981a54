// Package services contains application services for the CareerCompass
// client. This file defines the session manager: login, registration, Google
// login, logout and the session state derived from the token store.
package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/dmitrijs2005/careercompass/internal/client/client"
	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/tokenstore"
	"github.com/dmitrijs2005/careercompass/internal/logging"
	"github.com/go-playground/validator/v10"
)

// User-facing notifications.
const (
	MsgLoginSuccess       = "Login successful!"
	MsgRegisterSuccess    = "Registration successful! Please log in."
	MsgGoogleLoginSuccess = "Google login successful!"
	MsgLogoutSuccess      = "Logged out successfully"
	MsgSessionExpired     = "Session expired, please log in again"
)

// Notifier shows short messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// AuthService owns the session of the running client.
//
// Contract:
//   - Init: derive the session from the token store; must be called once
//     before anything else reads the state.
//   - Login, GoogleLogin: authenticate, persist tokens and user, become
//     authenticated. On failure the state is left untouched.
//   - Register: create an account; never authenticates.
//   - Logout: always succeeds and always ends anonymous.
//   - Session: snapshot of the current state.
//
// Every operation reports its outcome through the Notifier and still returns
// the error to the caller.
type AuthService interface {
	Init(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	GoogleLogin(ctx context.Context, code string) error
	Logout(ctx context.Context)
	Session() models.Session
	IsAuthenticated() bool
}

type authService struct {
	client   client.Client
	tokens   tokenstore.Store
	notifier Notifier
	validate *validator.Validate
	log      logging.Logger

	mu      sync.RWMutex
	state   models.SessionState
	user    *models.User
	loading int
}

type AuthOption func(*authService)

func WithNotifier(n Notifier) AuthOption {
	return func(a *authService) { a.notifier = n }
}

func WithAuthLogger(l logging.Logger) AuthOption {
	return func(a *authService) { a.log = l.With("component", "auth") }
}

// NewAuthService builds the session manager and subscribes it to session
// expiry reported by c.
func NewAuthService(c client.Client, tokens tokenstore.Store, opts ...AuthOption) AuthService {
	a := &authService{
		client:   c,
		tokens:   tokens,
		notifier: nopNotifier{},
		validate: newValidator(),
		log:      logging.Nop(),
		state:    models.StateUnknown,
		loading:  1,
	}
	for _, opt := range opts {
		opt(a)
	}

	c.OnSessionExpired(a.sessionExpired)
	return a
}

// Init reads the token store. An access token together with a stored user
// means authenticated. A token without a readable user is not trusted and is
// removed, so the store never admits a session the manager does not show.
func (a *authService) Init(ctx context.Context) {
	_, hasToken := a.tokens.AccessToken(ctx)
	user, hasUser := a.tokens.User(ctx)

	if hasToken && !hasUser {
		a.log.Warn(ctx, "stored token has no user profile, discarding session")
		if err := a.tokens.Clear(ctx); err != nil {
			a.log.Error(ctx, "token store not cleared", "error", err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if hasToken && hasUser {
		a.state, a.user = models.StateAuthenticated, user
	} else {
		a.state, a.user = models.StateAnonymous, nil
	}
	if a.loading > 0 {
		a.loading--
	}
	a.log.Debug(ctx, "session initialised", "state", a.state.String())
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	done := a.begin()
	defer done()

	if err := a.validate.Struct(models.LoginRequest{Username: username, Password: password}); err != nil {
		return a.fail(&client.ValidationError{Message: "Username and password are required"})
	}

	res, err := a.client.Login(ctx, username, password)
	if err != nil {
		a.log.Info(ctx, "login rejected", "username", username, "error", err)
		return a.fail(err)
	}
	if err := a.establish(ctx, res); err != nil {
		return a.fail(err)
	}

	a.notifier.Success(MsgLoginSuccess)
	return nil
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) error {
	done := a.begin()
	defer done()

	if err := a.validate.Struct(req); err != nil {
		return a.fail(registerValidationError(err))
	}

	if err := a.client.Register(ctx, req); err != nil {
		a.log.Info(ctx, "registration rejected", "username", req.Username, "error", err)
		return a.fail(err)
	}

	a.notifier.Success(MsgRegisterSuccess)
	return nil
}

func (a *authService) GoogleLogin(ctx context.Context, code string) error {
	done := a.begin()
	defer done()

	if code == "" {
		return a.fail(&client.ValidationError{Message: "Authorization code is required"})
	}

	res, err := a.client.GoogleLogin(ctx, code)
	if err != nil {
		a.log.Info(ctx, "google login rejected", "error", err)
		return a.fail(err)
	}
	if err := a.establish(ctx, res); err != nil {
		return a.fail(err)
	}

	a.notifier.Success(MsgGoogleLoginSuccess)
	return nil
}

// Logout clears the token store and the session. A storage failure is
// logged; the in-memory session is dropped regardless.
func (a *authService) Logout(ctx context.Context) {
	if err := a.tokens.Clear(ctx); err != nil {
		a.log.Error(ctx, "token store not cleared on logout", "error", err)
	}

	a.mu.Lock()
	a.state, a.user = models.StateAnonymous, nil
	a.mu.Unlock()

	a.notifier.Success(MsgLogoutSuccess)
}

func (a *authService) Session() models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := models.Session{
		State:           a.state,
		IsAuthenticated: a.state == models.StateAuthenticated,
		IsLoading:       a.loading > 0,
	}
	if a.user != nil {
		u := *a.user
		s.User = &u
	}
	return s
}

func (a *authService) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state == models.StateAuthenticated
}

// establish persists a successful login and switches to authenticated.
func (a *authService) establish(ctx context.Context, res *models.LoginResult) error {
	if err := a.tokens.Save(ctx, res.Tokens, res.User); err != nil {
		a.log.Error(ctx, "session not persisted", "error", err)
		return err
	}

	user := res.User
	a.mu.Lock()
	a.state, a.user = models.StateAuthenticated, &user
	a.mu.Unlock()

	a.log.Info(ctx, "logged in", "username", user.Username)
	return nil
}

// sessionExpired runs after the HTTP client gave up refreshing. The token
// store is already cleared at that point.
func (a *authService) sessionExpired(ctx context.Context) {
	a.mu.Lock()
	wasAuthenticated := a.state == models.StateAuthenticated
	a.state, a.user = models.StateAnonymous, nil
	a.mu.Unlock()

	if wasAuthenticated {
		a.log.Info(ctx, "session expired")
		a.notifier.Error(MsgSessionExpired)
	}
}

func (a *authService) begin() func() {
	a.mu.Lock()
	a.loading++
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		a.loading--
		a.mu.Unlock()
	}
}

func (a *authService) fail(err error) error {
	a.notifier.Error(userMessage(err))
	return err
}

// userMessage picks the text shown for err.
func userMessage(err error) string {
	var authErr *client.AuthError
	var valErr *client.ValidationError
	var netErr *client.NetworkError
	switch {
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &valErr):
		return valErr.Message
	case errors.As(err, &netErr):
		return "Server unavailable, please try again later"
	default:
		return err.Error()
	}
}

func registerValidationError(err error) *client.ValidationError {
	out := &client.ValidationError{Message: "Registration failed", Fields: map[string][]string{}}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = append(out.Fields[fe.Field()], fieldMessage(fe))
	}
	for _, name := range []string{"username", "email", "password"} {
		if msgs := out.Fields[name]; len(msgs) > 0 {
			out.Message = msgs[0]
			break
		}
	}
	return out
}

// newValidator reports fields by their JSON names, matching the keys the
// server uses for its own field errors.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}
