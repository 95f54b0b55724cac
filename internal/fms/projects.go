package fms

import (
	"context"
	"net/http"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// ProjectsClient calls the /api/projects resource.
type ProjectsClient struct {
	api *api.Client
}

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=128"`
	Description  string   `json:"description"`
	DepartmentID string   `json:"departmentId" validate:"required"`
	MemberIDs    []string `json:"memberIds"`
	StartDate    string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest is the payload for updating a project.
type UpdateProjectRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds,omitempty"`
	StartDate   string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Active      *bool    `json:"active,omitempty"`
}

// List returns all projects.
func (c *ProjectsClient) List(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.api.Get(ctx, "/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one project by id.
func (c *ProjectsClient) Get(ctx context.Context, id string) (*Project, error) {
	var out Project
	if err := c.api.Get(ctx, "/api/projects/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a project.
func (c *ProjectsClient) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Project
	if err := c.api.Post(ctx, "/api/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates a project.
func (c *ProjectsClient) Update(ctx context.Context, id string, req UpdateProjectRequest) (*Project, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Project
	if err := c.api.Put(ctx, "/api/projects/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a project.
func (c *ProjectsClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/projects/"+id)
}

// AddMembers adds users to a project.
func (c *ProjectsClient) AddMembers(ctx context.Context, id string, memberIDs []string) (*Project, error) {
	var out Project
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/api/projects/" + id + "/members",
		Auth:   true,
		Body:   map[string][]string{"memberIds": memberIDs},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
