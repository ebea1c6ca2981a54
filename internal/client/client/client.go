package client

import (
	"context"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

// Client is the API surface the services depend on.
type Client interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	GoogleLogin(ctx context.Context, code string) (*models.LoginResult, error)

	SendChatMessage(ctx context.Context, message string) (*models.ChatMessage, error)
	ChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	SearchJobs(ctx context.Context, jobTitle, location string) ([]models.Job, error)
	SearchColleges(ctx context.Context, field, location string) ([]models.College, error)

	// OnSessionExpired registers fn to run after the client gave up on
	// refreshing and cleared the token store.
	OnSessionExpired(fn func(ctx context.Context))
}
