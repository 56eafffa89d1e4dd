package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/csr/dialect/sql"
)

type Status string

type Audit struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt *time.Time
}

// User is an account.
//
//csr:json
//csr:entity
type User struct {
	Audit
	// ID is the primary key.
	ID      uuid.UUID `json:"id" db:"user_id"`
	Name    string
	Balance decimal.Decimal
	Tags    []string
	Scores  *[]int
	Status  Status
	Raw     []byte
	Meta    map[string]string
	Secret  string `json:"-" db:"-"`
	note    string
}

//csr:mapper postgres
type UserMapper interface {
	// Find returns a user.
	//csr:select
	// SELECT * FROM users
	// WHERE user_id = #{id}
	Find(ctx context.Context, id uuid.UUID) (*User, error)

	//csr:select SELECT * FROM users #if{name != nil} WHERE name = #{name} #endif
	List(ctx context.Context, db sql.ExecQuerier, name *string) ([]User, error)
}

//csr:service
type UserService struct {
	users UserMapper
}

func NewUserService(users UserMapper) *UserService {
	return &UserService{users: users}
}

// Get returns a user.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.Find(ctx, id)
}

//csr:controller /users
type UserController struct {
	svc *UserService
}

func NewUserController(svc *UserService) *UserController {
	return &UserController{svc: svc}
}

// Get answers one user.
//
//csr:http GET /{id}
//csr:param tenant header=X-Tenant
func (c *UserController) Get(ctx context.Context, id uuid.UUID, tenant string) (*User, error) {
	return c.svc.Get(ctx, id)
}

//csr:param missing query
func (c *UserController) helper() {}

//csr:unknown
type Broken struct{}
