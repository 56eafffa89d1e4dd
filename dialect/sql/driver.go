package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/syssam/csr/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// ExecQuerier wraps the standard Exec and Query methods.
// *sql.DB, *sql.Tx and *sql.Conn implement it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is the connection provider of generated mappers. It pairs a
// *sql.DB with the dialect used to build commands for it.
type Driver struct {
	db      *sql.DB
	dialect string
}

// Open opens a database with one of the registered drivers ("postgres",
// "pgx", "mysql" or "sqlite") and returns a Driver for it.
// MySQL sources are normalized to parse DATETIME values into time.Time.
func Open(driverName, source string) (*Driver, error) {
	if driverName == dialect.MySQL {
		cfg, err := mysql.ParseDSN(source)
		if err != nil {
			return nil, fmt.Errorf("dialect/sql: parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		source = cfg.FormatDSN()
	}
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(driverName, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(name string, db *sql.DB) *Driver {
	return &Driver{db: db, dialect: dialect.Normalize(name)}
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB { return d.db }

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string { return d.dialect }

// Close closes the underlying database.
func (d *Driver) Close() error { return d.db.Close() }

// Conn acquires a dedicated connection. Session variables attached to ctx
// with WithVar are set on it; the returned release function resets them and
// returns the connection to the pool. Release must be called on every path.
func (d *Driver) Conn(ctx context.Context) (*sql.Conn, func() error, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}
	release, err := d.setVars(ctx, conn)
	if err != nil {
		return nil, nil, errors.Join(err, conn.Close())
	}
	return conn, release, nil
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds session variables to set on acquired connections.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds a session variable to set on
// connections acquired through Driver.Conn.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	vars := make([]struct{ k, v string }, len(sv.vars), len(sv.vars)+1)
	copy(vars, sv.vars)
	vars = append(vars, struct{ k, v string }{k: name, v: value})
	return context.WithValue(ctx, ctxVarsKey{}, sessionVars{vars: vars})
}

// VarFromContext returns the session variable value from the context.
// The last value set for name wins.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for i := len(sv.vars) - 1; i >= 0; i-- {
		if sv.vars[i].k == name {
			return sv.vars[i].v, true
		}
	}
	return "", false
}

// setVars applies the session variables of ctx on conn and returns its release function.
func (d *Driver) setVars(ctx context.Context, conn *sql.Conn) (func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return conn.Close, nil
	}
	var (
		reset []string
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			return nil, fmt.Errorf("dialect/sql: invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch d.dialect {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		if _, err := conn.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", s.k, escapeStringValue(s.v))); err != nil {
			return nil, fmt.Errorf("dialect/sql: set session vars: %w", err)
		}
	}
	if len(reset) == 0 {
		return conn.Close, nil
	}
	return func() error {
		// The caller's context may be canceled by now.
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, q := range reset {
			if _, err := conn.ExecContext(cleanupCtx, q); err != nil {
				return errors.Join(err, conn.Close())
			}
		}
		return conn.Close()
	}, nil
}

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}
