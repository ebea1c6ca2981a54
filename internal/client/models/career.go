package models

import "time"

type ChatRequest struct {
	Message string `json:"message"`
}

// ChatMessage is one exchange with the career assistant.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type JobSearchRequest struct {
	JobTitle string `json:"job_title"`
	Location string `json:"location"`
}

// Job mirrors the subset of the upstream job-search record the client shows.
type Job struct {
	ID             string `json:"job_id"`
	Title          string `json:"job_title"`
	Employer       string `json:"employer_name"`
	City           string `json:"job_city"`
	Country        string `json:"job_country"`
	EmploymentType string `json:"job_employment_type"`
	ApplyLink      string `json:"job_apply_link"`
}

type CollegeSearchRequest struct {
	Field    string `json:"field"`
	Location string `json:"location"`
}

type College struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Website  string   `json:"website,omitempty"`
	Courses  []string `json:"courses,omitempty"`
}

// SearchResponse is the envelope of the job and college search endpoints.
type SearchResponse[T any] struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Data   []T    `json:"data"`
}
