package sql

import (
	"database/sql/driver"
	"reflect"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/csr/dialect"
)

// Command accumulates the fragments of one compiled SQL template and the
// values bound to its positional markers (`@_<seq>`). Query rewrites the
// markers into the placeholders of the target dialect.
//
//	cmd := sql.NewCommand(dialect.Postgres)
//	cmd.Append("SELECT * FROM users WHERE 1 = 1")
//	if name != nil {
//		cmd.Append("AND name = @_0").Bind(0, name, dialect.TypeUnknown)
//	}
//	query, args := cmd.Query()
type Command struct {
	dialect string
	text    strings.Builder
	args    map[int]bound
}

type bound struct {
	value any
	typ   dialect.Type
}

// NewCommand returns an empty command for the given dialect.
func NewCommand(name string) *Command {
	return &Command{dialect: dialect.Normalize(name), args: make(map[int]bound)}
}

// Append appends a fragment. Fragments are joined with a single space.
func (c *Command) Append(fragment string) *Command {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return c
	}
	if c.text.Len() > 0 {
		c.text.WriteByte(' ')
	}
	c.text.WriteString(fragment)
	return c
}

// Bind binds v to the marker with the given sequence number.
func (c *Command) Bind(seq int, v any, t dialect.Type) *Command {
	c.args[seq] = bound{value: c.convert(v), typ: t}
	return c
}

// Text returns the accumulated text with its positional markers.
func (c *Command) Text() string { return c.text.String() }

// Bound reports the number of bound markers.
func (c *Command) Bound() int { return len(c.args) }

// Query returns the command text in the dialect's placeholder syntax and the
// arguments in order of appearance. Markers without a bound value and markers
// inside quoted literals are kept verbatim.
func (c *Command) Query() (string, []any) {
	var (
		s     = c.text.String()
		b     strings.Builder
		args  = make([]any, 0, len(c.args))
		quote byte
	)
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if quote != 0 {
			b.WriteByte(s[i])
			switch {
			case s[i] == '\\' && i+1 < len(s):
				i++
				b.WriteByte(s[i])
			case s[i] == quote && i+1 < len(s) && s[i+1] == quote:
				i++
				b.WriteByte(s[i])
			case s[i] == quote:
				quote = 0
			}
			i++
			continue
		}
		if s[i] == '\'' || s[i] == '"' {
			quote = s[i]
			b.WriteByte(s[i])
			i++
			continue
		}
		if s[i] != '@' || i+2 >= len(s) || s[i+1] != '_' || !isDigit(s[i+2]) {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i + 2
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		seq, err := strconv.Atoi(s[i+2 : j])
		a, ok := c.args[seq]
		if err != nil || !ok {
			b.WriteString(s[i:j])
			i = j
			continue
		}
		args = append(args, a.value)
		b.WriteString(dialect.Placeholder(c.dialect, len(args), a.typ))
		i = j
	}
	return b.String(), args
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// convert dereferences pointers, so nil pointers bind as NULL, and wraps
// slices into Postgres arrays.
func (c *Command) convert(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(driver.Valuer); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return c.convert(rv.Elem().Interface())
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 && c.dialect == dialect.Postgres {
		return pq.Array(v)
	}
	return v
}
