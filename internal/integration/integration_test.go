package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/csr"
	"github.com/syssam/csr/dialect"
	"github.com/syssam/csr/dialect/sql"
	"github.com/syssam/csr/jsonx"
)

func ptr[T any](v T) *T { return &v }

var createdAt = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

// openRegistry returns a registry over an in-memory SQLite database holding
// two users: a8m, fully populated, and nati, whose nickname and age are NULL.
func openRegistry(t *testing.T) (*csr.Registry, *sql.Driver) {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	// :memory: databases are per connection.
	drv.DB().SetMaxOpenConns(1)
	r := csr.NewRegistry(csr.WithConnector(drv))
	t.Cleanup(func() { _ = r.Close() })
	RegisterAll(r)

	ctx := context.Background()
	_, err = drv.DB().ExecContext(ctx, `CREATE TABLE users (
		user_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		nickname TEXT,
		age INTEGER,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`)
	require.NoError(t, err)

	users := userMapper(t, r)
	require.NoError(t, users.Create(ctx, drv.DB(), 1, "a8m", string(StatusActive), createdAt))
	_, err = drv.DB().ExecContext(ctx, `UPDATE users SET nickname = 'ariel', age = 30 WHERE user_id = 1`)
	require.NoError(t, err)
	_, err = drv.DB().ExecContext(ctx, `INSERT INTO users (user_id, name, status, created_at) VALUES (2, 'nati', 'disabled', '2024-05-01 10:30:00')`)
	require.NoError(t, err)
	return r, drv
}

func userMapper(t *testing.T, r *csr.Registry) UserMapper {
	t.Helper()
	m, err := csr.Resolve[UserMapper](r, UserMapperKey)
	require.NoError(t, err)
	return m
}

// =============================================================================
// Codec Tests
// =============================================================================

func TestUserJSON(t *testing.T) {
	u := &User{
		ID:        1,
		Name:      "a8m",
		Nickname:  ptr("ariel"),
		Age:       ptr(30),
		Status:    StatusActive,
		Tags:      []string{"a", "b"},
		Scores:    &[]int{1, 2},
		Profile:   &Profile{Email: "a8m@example.com"},
		CreatedAt: createdAt,
		Secret:    "hidden",
	}
	data, err := jsonx.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"a8m","nickname":"ariel","age":30,"status":"active","tags":["a","b"],"scores":[1,2],"profile":{"email":"a8m@example.com"},"createdAt":"2024-05-01T10:30:00.000+00:00"}`, string(data))

	got, err := jsonx.Unmarshal(data, DecodeUser)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(got.CreatedAt))
	got.CreatedAt = createdAt
	want := *u
	want.Secret = ""
	assert.Equal(t, want, got)

	t.Run("encoding/json", func(t *testing.T) {
		std, err := json.Marshal(u)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(std))

		var v User
		require.NoError(t, json.Unmarshal(std, &v))
		assert.Equal(t, "ariel", *v.Nickname)
		assert.Equal(t, &Profile{Email: "a8m@example.com"}, v.Profile)
	})
	t.Run("nil", func(t *testing.T) {
		var v *User
		data, err := jsonx.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})
}

func TestUserJSON_Lists(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		tags   []string
		scores *[]int
		out    string
	}{
		{
			name: "absent",
			json: `{}`,
			out:  `"tags":[]`,
		},
		{
			name: "null",
			json: `{"tags":null,"scores":null}`,
			out:  `"tags":[]`,
		},
		{
			name:   "empty",
			json:   `{"tags":[],"scores":[]}`,
			scores: &[]int{},
			out:    `"tags":[],"scores":[]`,
		},
		{
			name:   "values",
			json:   `{"tags":["x",1,"y"],"scores":[3,"x",4]}`,
			tags:   []string{"x", "y"},
			scores: &[]int{3, 4},
			out:    `"tags":["x","y"],"scores":[3,4]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := jsonx.Unmarshal([]byte(tt.json), DecodeUser)
			require.NoError(t, err)
			assert.Equal(t, tt.tags, v.Tags)
			assert.Equal(t, tt.scores, v.Scores)

			data, err := jsonx.Marshal(&v)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.out)

			again, err := jsonx.Unmarshal(data, DecodeUser)
			require.NoError(t, err)
			assert.Equal(t, v.Tags, again.Tags, "decode(encode(v)) keeps the list")
			assert.Equal(t, v.Scores, again.Scores)
		})
	}
}

// =============================================================================
// Scanner Tests
// =============================================================================

func TestScanUsers(t *testing.T) {
	_, drv := openRegistry(t)
	rows, err := drv.DB().QueryContext(context.Background(), `SELECT user_id, name, nickname, age, status, created_at, 'x' AS extra FROM users ORDER BY user_id`)
	require.NoError(t, err)
	defer rows.Close()

	users, err := ScanUsers(rows)
	require.NoError(t, err)
	require.Len(t, users, 2)

	a8m := users[0]
	assert.Equal(t, int64(1), a8m.ID)
	assert.Equal(t, "a8m", a8m.Name)
	assert.Equal(t, ptr("ariel"), a8m.Nickname)
	assert.Equal(t, ptr(30), a8m.Age)
	assert.Equal(t, StatusActive, a8m.Status)
	assert.True(t, createdAt.Equal(a8m.CreatedAt), a8m.CreatedAt)

	nati := users[1]
	assert.Equal(t, "nati", nati.Name)
	assert.Nil(t, nati.Nickname, "NULL column")
	assert.Nil(t, nati.Age, "NULL column")
	assert.Equal(t, StatusDisabled, nati.Status)
	assert.True(t, createdAt.Equal(nati.CreatedAt), nati.CreatedAt)
}

func TestScanUser_MissingColumns(t *testing.T) {
	_, drv := openRegistry(t)
	rows, err := drv.DB().QueryContext(context.Background(), `SELECT name FROM users WHERE user_id = 2`)
	require.NoError(t, err)
	defer rows.Close()

	u, err := ScanUser(rows)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, User{Name: "nati"}, *u)

	u, err = ScanUser(rows)
	require.NoError(t, err)
	assert.Nil(t, u, "no row left")
}

// =============================================================================
// Mapper Tests
// =============================================================================

func TestUserMapper(t *testing.T) {
	r, _ := openRegistry(t)
	ctx := context.Background()
	users := userMapper(t, r)

	t.Run("List without name", func(t *testing.T) {
		all, err := users.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "a8m", all[0].Name)
		assert.Equal(t, "nati", all[1].Name)
	})
	t.Run("List by name", func(t *testing.T) {
		some, err := users.List(ctx, ptr("nati"))
		require.NoError(t, err)
		require.Len(t, some, 1)
		assert.Equal(t, int64(2), some[0].ID)

		none, err := users.List(ctx, ptr("x"))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
	t.Run("Find", func(t *testing.T) {
		u, err := users.Find(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "a8m", u.Name)

		u, err = users.Find(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, u)
	})
	t.Run("Rename", func(t *testing.T) {
		n, err := users.Rename(ctx, 2, ptr("n"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		u, err := users.Find(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, ptr("n"), u.Nickname)

		n, err = users.Rename(ctx, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		u, err = users.Find(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, u.Nickname, "nil binds NULL")

		n, err = users.Rename(ctx, 42, ptr("ghost"))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestRegisterAll(t *testing.T) {
	r, _ := openRegistry(t)
	assert.True(t, r.Has(UserMapperKey))
	assert.True(t, r.Has(UserServiceKey))
	assert.True(t, r.Has("*github.com/syssam/csr/internal/integration.UserService"))
	assert.True(t, r.Has(UserControllerKey))
	assert.Equal(t, []string{UserControllerKey}, r.Controllers())

	const workers = 32
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		apis  = make([]UserServiceAPI, workers)
		impls = make([]*UserService, workers)
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			api, err := csr.Resolve[UserServiceAPI](r, UserServiceKey)
			assert.NoError(t, err)
			impl, err := csr.Resolve[*UserService](r, "*github.com/syssam/csr/internal/integration.UserService")
			assert.NoError(t, err)
			apis[i], impls[i] = api, impl
		}()
	}
	close(start)
	wg.Wait()

	for i := range workers {
		assert.Same(t, impls[0], impls[i])
		assert.Same(t, impls[0], apis[i].(*UserService))
	}
	users, err := apis[0].Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

// =============================================================================
// Controller Tests
// =============================================================================

func TestUserController(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, _ := openRegistry(t)
	engine := gin.New()
	r.Mount(engine)

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{
			name:   "get",
			target: "/users/2",
			status: http.StatusOK,
			body:   `{"id":2,"name":"nati","status":"disabled","tags":[],"createdAt":"2024-05-01T10:30:00.000+00:00"}`,
		},
		{
			name:   "not found",
			target: "/users/42",
			status: http.StatusNotFound,
			body:   `{"error":"user not found"}`,
		},
		{
			name:   "invalid route value",
			target: "/users/abc",
			status: http.StatusBadRequest,
		},
		{
			name:   "list",
			target: "/users/?limit=1",
			status: http.StatusOK,
		},
		{
			name:   "list by name",
			target: "/users/?name=x&limit=5",
			status: http.StatusOK,
			body:   `[]`,
		},
		{
			name:   "missing query value",
			target: "/users/?name=nati",
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid query value",
			target: "/users/?limit=many",
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}

	t.Run("list body", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/?limit=1", nil))
		require.Equal(t, http.StatusOK, w.Code)
		users, err := jsonx.Unmarshal(w.Body.Bytes(), func(n jsonx.Node) []User {
			items, _ := n.AsArray()
			out := make([]User, len(items))
			for i, item := range items {
				out[i] = DecodeUser(item)
			}
			return out
		})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "a8m", users[0].Name)
	})
	t.Run("missing value names the parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "limit")
	})
}
