package integration

import "context"

// UserService serves the users of a UserMapper.
//
//csr:service
type UserService struct {
	users UserMapper
}

// NewUserService returns a service over users.
func NewUserService(users UserMapper) *UserService {
	return &UserService{users: users}
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, id int64) (*User, error) {
	return s.users.Find(ctx, id)
}

// Search lists the users named name, all of them when name is nil.
func (s *UserService) Search(ctx context.Context, name *string) ([]User, error) {
	return s.users.List(ctx, name)
}
