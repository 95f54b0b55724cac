package fms

import (
	"context"
	"net/http"
	"net/url"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// SubmissionsClient calls the /api/submits resource. Submissions carry
// analysis results (sentiment, score) computed elsewhere; this client only
// creates and reads them.
type SubmissionsClient struct {
	api *api.Client
}

// CreateSubmissionRequest is the payload for submitting a filled-in form.
type CreateSubmissionRequest struct {
	FeedbackID string   `json:"feedbackId" validate:"required"`
	Answers    []Answer `json:"answers" validate:"required,min=1,dive"`
	Privacy    string   `json:"privacy" validate:"required,oneof=public anonymous"`
}

// List returns submissions, optionally filtered by feedback form.
func (c *SubmissionsClient) List(ctx context.Context, feedbackID string) ([]Submission, error) {
	req := api.Request{Method: http.MethodGet, Path: "/api/submits", Auth: true}
	if feedbackID != "" {
		req.Query = url.Values{"feedbackId": {feedbackID}}
	}
	var out []Submission
	if err := c.api.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one submission by id.
func (c *SubmissionsClient) Get(ctx context.Context, id string) (*Submission, error) {
	var out Submission
	if err := c.api.Get(ctx, "/api/submits/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create submits a filled-in feedback form.
func (c *SubmissionsClient) Create(ctx context.Context, req CreateSubmissionRequest) (*Submission, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Submission
	if err := c.api.Post(ctx, "/api/submits", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
