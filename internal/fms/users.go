package fms

import (
	"context"
	"net/http"

	"github.com/feedback-platform/feedbackctl/internal/api"
)

// UsersClient calls the /api/users resource.
type UsersClient struct {
	api *api.Client
}

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Username      string   `json:"username" validate:"required,min=3,max=64"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8"`
	FirstName     string   `json:"firstName"`
	LastName      string   `json:"lastName"`
	Roles         []string `json:"roles" validate:"required,min=1"`
	DepartmentIDs []string `json:"departmentIds"`
}

// UpdateUserRequest is the payload for updating a user. Zero-valued fields
// are omitted from the request.
type UpdateUserRequest struct {
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	FirstName     string   `json:"firstName,omitempty"`
	LastName      string   `json:"lastName,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	DepartmentIDs []string `json:"departmentIds,omitempty"`
	Active        *bool    `json:"active,omitempty"`
}

// List returns all users.
func (c *UsersClient) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.api.Get(ctx, "/api/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one user by id.
func (c *UsersClient) Get(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.api.Get(ctx, "/api/users/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a user.
func (c *UsersClient) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out User
	if err := c.api.Post(ctx, "/api/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates a user.
func (c *UsersClient) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out User
	if err := c.api.Put(ctx, "/api/users/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user.
func (c *UsersClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/users/"+id)
}

// Activate toggles a user's active flag.
func (c *UsersClient) Activate(ctx context.Context, id string, active bool) (*User, error) {
	var out User
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodPut,
		Path:   "/api/users/" + id + "/active",
		Auth:   true,
		Body:   map[string]bool{"active": active},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
