package fms

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// validate checks request payloads client-side before any network call.
var validate = validator.New()

// Client aggregates the per-resource clients over one shared HTTP client.
type Client struct {
	Users       *UsersClient
	Departments *DepartmentsClient
	Projects    *ProjectsClient
	Questions   *QuestionsClient
	Feedbacks   *FeedbacksClient
	Submissions *SubmissionsClient
}

// New creates the resource clients.
func New(apiClient *api.Client) *Client {
	return &Client{
		Users:       &UsersClient{api: apiClient},
		Departments: &DepartmentsClient{api: apiClient},
		Projects:    &ProjectsClient{api: apiClient},
		Questions:   &QuestionsClient{api: apiClient},
		Feedbacks:   &FeedbacksClient{api: apiClient},
		Submissions: &SubmissionsClient{api: apiClient},
	}
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
