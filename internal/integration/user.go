package integration

import "time"

// Status is the lifecycle state of a user.
type Status string

// Statuses of a user.
const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Profile holds the contact details of a user.
//
//csr:json
type Profile struct {
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// User is a row of the users table.
//
//csr:json
//csr:entity
type User struct {
	ID        int64     `json:"id" db:"user_id"`
	Name      string    `json:"name"`
	Nickname  *string   `json:"nickname"`
	Age       *int      `json:"age"`
	Status    Status    `json:"status"`
	Tags      []string  `json:"tags"`
	Scores    *[]int    `json:"scores"`
	Profile   *Profile  `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
	Secret    string    `json:"-" db:"-"`
}
