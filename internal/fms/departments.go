package fms

import (
	"context"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// DepartmentsClient calls the /api/departments resource.
type DepartmentsClient struct {
	api *api.Client
}

// CreateDepartmentRequest is the payload for creating a department.
type CreateDepartmentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=128"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest is the payload for updating a department.
type UpdateDepartmentRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Description string `json:"description,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

// List returns all departments.
func (c *DepartmentsClient) List(ctx context.Context) ([]Department, error) {
	var out []Department
	if err := c.api.Get(ctx, "/api/departments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one department by id.
func (c *DepartmentsClient) Get(ctx context.Context, id string) (*Department, error) {
	var out Department
	if err := c.api.Get(ctx, "/api/departments/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a department.
func (c *DepartmentsClient) Create(ctx context.Context, req CreateDepartmentRequest) (*Department, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Department
	if err := c.api.Post(ctx, "/api/departments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates a department.
func (c *DepartmentsClient) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (*Department, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out Department
	if err := c.api.Put(ctx, "/api/departments/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a department.
func (c *DepartmentsClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/departments/"+id)
}
