package models

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Access  string `json:"access"  validate:"required"`
	Refresh string `json:"refresh" validate:"required"`
	User    *User  `json:"user"    validate:"required"`
}

// GoogleLoginRequest is the body of POST /v1/auth/google.
type GoogleLoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// GoogleLoginResponse is returned by POST /v1/auth/google. The backend uses
// different field names here than on /login.
type GoogleLoginResponse struct {
	AccessToken  string `json:"access_token"  validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	User         *User  `json:"user"          validate:"required"`
}

// RefreshRequest is the body of POST /refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse is returned by POST /refresh. Refresh is only set when the
// server rotates refresh tokens.
type RefreshResponse struct {
	Access  string `json:"access"  validate:"required"`
	Refresh string `json:"refresh,omitempty"`
}

// LoginResult is what a successful login yields regardless of the endpoint.
type LoginResult struct {
	Tokens TokenPair
	User   User
}
