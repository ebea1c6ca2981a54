package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

// DefaultJobLocation is used when a job search names no location.
const DefaultJobLocation = "India"

// Login posts credentials. A rejection becomes *AuthError carrying the
// server message; network failures stay *NetworkError.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	var resp models.LoginResponse
	err := c.Do(ctx, http.MethodPost, pathLogin, models.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, asAuthError(err, "Login failed")
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, &AuthError{Message: "Login failed", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	return &models.LoginResult{
		Tokens: models.TokenPair{AccessToken: resp.Access, RefreshToken: resp.Refresh},
		User:   *resp.User,
	}, nil
}

// Register creates an account. It does not log the user in. A 400 becomes
// *ValidationError with the message of the first rejected field.
func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) error {
	err := c.Do(ctx, http.MethodPost, pathRegister, req, nil)
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	if httpErr.Status == http.StatusBadRequest {
		return &ValidationError{Message: registrationMessage(httpErr.Body), Fields: httpErr.Body.Fields}
	}
	return asAuthError(err, "Registration failed")
}

// GoogleLogin exchanges a Google authorization code for a token pair.
func (c *HTTPClient) GoogleLogin(ctx context.Context, code string) (*models.LoginResult, error) {
	var resp models.GoogleLoginResponse
	if err := c.Do(ctx, http.MethodPost, pathGoogleLogin, models.GoogleLoginRequest{Code: code}, &resp); err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return nil, err
		}
		return nil, &AuthError{Message: "Google login failed", Err: err}
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, &AuthError{Message: "Google login failed", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	return &models.LoginResult{
		Tokens: models.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken},
		User:   *resp.User,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. It is sent
// without an Authorization header and never retried.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	payload, err := json.Marshal(models.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, err
	}

	status, data, err := c.roundTrip(ctx, http.MethodPost, pathRefresh, payload, "")
	if err != nil {
		return nil, err
	}

	var resp models.RefreshResponse
	if err := decodeResponse(status, data, &resp); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

func (c *HTTPClient) SendChatMessage(ctx context.Context, message string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	if err := c.Do(ctx, http.MethodPost, "/chat", models.ChatRequest{Message: message}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ChatHistory returns prior exchanges, newest first. Both a bare list and a
// paginated {"results": [...]} body are accepted; an empty body means no
// history.
func (c *HTTPClient) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/chat/history", nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var list []models.ChatMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []models.ChatMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return page.Results, nil
}

func (c *HTTPClient) SearchJobs(ctx context.Context, jobTitle, location string) ([]models.Job, error) {
	if location == "" {
		location = DefaultJobLocation
	}
	var resp models.SearchResponse[models.Job]
	if err := c.Do(ctx, http.MethodPost, "/jobs/search", models.JobSearchRequest{JobTitle: jobTitle, Location: location}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *HTTPClient) SearchColleges(ctx context.Context, field, location string) ([]models.College, error) {
	var resp models.SearchResponse[models.College]
	if err := c.Do(ctx, http.MethodPost, "/colleges/search", models.CollegeSearchRequest{Field: field, Location: location}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// asAuthError turns an HTTP rejection into *AuthError with the server's
// message, or fallback when the body had none. Other errors pass through.
func asAuthError(err error, fallback string) error {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return err
	}
	msg := httpErr.Body.Summary()
	if msg == "" {
		msg = fallback
	}
	return &AuthError{Message: msg, Err: err}
}

func registrationMessage(body ErrorResponse) string {
	for _, msg := range []string{body.Field("username"), body.Field("email"), body.Detail} {
		if msg != "" {
			return msg
		}
	}
	return "Registration failed"
}
