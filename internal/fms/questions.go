package fms

import (
	"context"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// QuestionsClient calls the /api/questions resource.
type QuestionsClient struct {
	api *api.Client
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	Text        string   `json:"text" validate:"required,min=3"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Type        string   `json:"type" validate:"required,oneof=text rating single_choice multiple_choice"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
}

// UpdateQuestionRequest is the payload for updating a question.
type UpdateQuestionRequest struct {
	Text        string   `json:"text,omitempty" validate:"omitempty,min=3"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Options     []string `json:"options,omitempty"`
	Required    *bool    `json:"required,omitempty"`
}

// List returns all questions.
func (c *QuestionsClient) List(ctx context.Context) ([]Question, error) {
	var out []Question
	if err := c.api.Get(ctx, "/api/questions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one question by id.
func (c *QuestionsClient) Get(ctx context.Context, id string) (*Question, error) {
	var out Question
	if err := c.api.Get(ctx, "/api/questions/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a question.
func (c *QuestionsClient) Create(ctx context.Context, req CreateQuestionRequest) (*Question, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Question
	if err := c.api.Post(ctx, "/api/questions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates a question.
func (c *QuestionsClient) Update(ctx context.Context, id string, req UpdateQuestionRequest) (*Question, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Question
	if err := c.api.Put(ctx, "/api/questions/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a question.
func (c *QuestionsClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/questions/"+id)
}
