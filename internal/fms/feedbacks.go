package fms

import (
	"context"
	"net/http"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// FeedbacksClient calls the /api/feedbacks resource (feedback forms).
type FeedbacksClient struct {
	api *api.Client
}

// CreateFeedbackRequest is the payload for creating a feedback form.
type CreateFeedbackRequest struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    string   `json:"description"`
	ProjectID      string   `json:"projectId" validate:"required"`
	QuestionIDs    []string `json:"questionIds" validate:"required,min=1"`
	AllowAnonymous bool     `json:"allowAnonymous"`
	StartDate      string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateFeedbackRequest is the payload for updating a feedback form.
type UpdateFeedbackRequest struct {
	Title          string   `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description    string   `json:"description,omitempty"`
	QuestionIDs    []string `json:"questionIds,omitempty"`
	AllowAnonymous *bool    `json:"allowAnonymous,omitempty"`
	StartDate      string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// List returns all feedback forms.
func (c *FeedbacksClient) List(ctx context.Context) ([]Feedback, error) {
	var out []Feedback
	if err := c.api.Get(ctx, "/api/feedbacks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one feedback form by id.
func (c *FeedbacksClient) Get(ctx context.Context, id string) (*Feedback, error) {
	var out Feedback
	if err := c.api.Get(ctx, "/api/feedbacks/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a feedback form.
func (c *FeedbacksClient) Create(ctx context.Context, req CreateFeedbackRequest) (*Feedback, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Feedback
	if err := c.api.Post(ctx, "/api/feedbacks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates a feedback form.
func (c *FeedbacksClient) Update(ctx context.Context, id string, req UpdateFeedbackRequest) (*Feedback, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Feedback
	if err := c.api.Put(ctx, "/api/feedbacks/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a feedback form.
func (c *FeedbacksClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/feedbacks/"+id)
}

// Close stops collecting submissions for a feedback form.
func (c *FeedbacksClient) Close(ctx context.Context, id string) (*Feedback, error) {
	var out Feedback
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/feedbacks/" + id + "/close",
		Auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
