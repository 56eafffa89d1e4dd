package integration

import (
	"context"
	"errors"
	"net/http"
)

// ErrNotFound answers 404.
var ErrNotFound = notFound{}

type notFound struct{}

func (notFound) Error() string   { return "user not found" }
func (notFound) StatusCode() int { return http.StatusNotFound }

// UserController serves the users over HTTP.
//
//csr:controller /users
type UserController struct {
	svc *UserService
}

// NewUserController returns a controller over svc.
func NewUserController(svc *UserService) *UserController {
	return &UserController{svc: svc}
}

// Get answers one user.
//
//csr:http GET /{id}
func (c *UserController) Get(ctx context.Context, id int64) (*User, error) {
	u, err := c.svc.Get(ctx, id)
	if err == nil && u == nil {
		return nil, ErrNotFound
	}
	return u, err
}

// List answers at most limit users, filtered by name when present.
//
//csr:http GET /
func (c *UserController) List(ctx context.Context, name *string, limit int) ([]User, error) {
	if limit < 0 {
		return nil, errors.New("negative limit")
	}
	users, err := c.svc.Search(ctx, name)
	if len(users) > limit {
		users = users[:limit]
	}
	return users, err
}
