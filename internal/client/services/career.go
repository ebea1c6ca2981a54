package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/careercompass/internal/client/client"
	"github.com/dmitrijs2005/careercompass/internal/client/models"
)

// CareerService exposes the assistant chat and the job and college searches.
// Empty inputs are rejected locally with *client.ValidationError before any
// request is sent.
type CareerService interface {
	Chat(ctx context.Context, message string) (*models.ChatMessage, error)
	History(ctx context.Context) ([]models.ChatMessage, error)
	Jobs(ctx context.Context, jobTitle, location string) ([]models.Job, error)
	Colleges(ctx context.Context, field, location string) ([]models.College, error)
}

type careerService struct {
	client client.Client
}

func NewCareerService(c client.Client) CareerService {
	return &careerService{client: c}
}

func (s *careerService) Chat(ctx context.Context, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &client.ValidationError{Message: "Message cannot be empty"}
	}
	return s.client.SendChatMessage(ctx, message)
}

func (s *careerService) History(ctx context.Context) ([]models.ChatMessage, error) {
	return s.client.ChatHistory(ctx)
}

func (s *careerService) Jobs(ctx context.Context, jobTitle, location string) ([]models.Job, error) {
	jobTitle = strings.TrimSpace(jobTitle)
	if jobTitle == "" {
		return nil, &client.ValidationError{Message: "Job title is required"}
	}
	return s.client.SearchJobs(ctx, jobTitle, strings.TrimSpace(location))
}

func (s *careerService) Colleges(ctx context.Context, field, location string) ([]models.College, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, &client.ValidationError{Message: "Field of study is required"}
	}
	return s.client.SearchColleges(ctx, field, strings.TrimSpace(location))
}
