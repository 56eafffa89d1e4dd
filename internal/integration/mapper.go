package integration

import (
	"context"
	"time"

	"github.com/syssam/csr/dialect/sql"
)

// UserMapper reads and writes the users table.
//
//csr:mapper sqlite
type UserMapper interface {
	// Find returns the user with the given id, or nil.
	//csr:select SELECT * FROM users WHERE user_id = #{id}
	Find(ctx context.Context, id int64) (*User, error)

	// List returns the users named name, or every user when name is nil.
	//csr:select
	// SELECT user_id, name, nickname, age, status, created_at FROM users
	// WHERE 1 = 1
	// #if{name != nil} AND name = #{name} #endif
	// ORDER BY user_id
	List(ctx context.Context, name *string) ([]User, error)

	//csr:update UPDATE users SET nickname = #{nickname} WHERE user_id = #{id}
	Rename(ctx context.Context, id int64, nickname *string) (int64, error)

	//csr:insert INSERT INTO users (user_id, name, status, created_at) VALUES (#{id}, #{name}, #{status}, #{createdAt})
	Create(ctx context.Context, db sql.ExecQuerier, id int64, name string, status string, createdAt time.Time) error
}
