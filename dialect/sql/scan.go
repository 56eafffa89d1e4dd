package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Columns maps the column names of a result onto their ordinals.
// It is built once per result and shared by every row read from it.
type Columns struct {
	n      int
	exact  map[string]int
	folded map[string]int
}

// ColumnsOf reads the column names of rows.
func ColumnsOf(rows ColumnScanner) (*Columns, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: read columns: %w", err)
	}
	return NewColumns(names), nil
}

// NewColumns returns the name→ordinal map of names. On duplicate names the
// first ordinal wins.
func NewColumns(names []string) *Columns {
	c := &Columns{
		n:      len(names),
		exact:  make(map[string]int, len(names)),
		folded: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, ok := c.exact[name]; !ok {
			c.exact[name] = i
		}
		if f := fold.String(name); f != "" {
			if _, ok := c.folded[f]; !ok {
				c.folded[f] = i
			}
		}
	}
	return c
}

// Len returns the number of columns.
func (c *Columns) Len() int { return c.n }

// Ordinal returns the ordinal of the first candidate present in the result,
// or -1. Candidates are matched exactly first, then case-insensitively.
func (c *Columns) Ordinal(candidates ...string) int {
	for _, name := range candidates {
		if i, ok := c.exact[name]; ok {
			return i
		}
	}
	for _, name := range candidates {
		if i, ok := c.folded[fold.String(name)]; ok {
			return i
		}
	}
	return -1
}

// Record holds the raw values of one row.
type Record []any

// ScanRecord scans the current row of rows into a Record of n values.
func ScanRecord(rows ColumnScanner, n int) (Record, error) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan row: %w", err)
	}
	return values, nil
}

// value returns the raw value at i; ok is false for a negative ordinal,
// an ordinal out of range or a NULL value.
func (r Record) value(i int) (any, bool) {
	if i < 0 || i >= len(r) || r[i] == nil {
		return nil, false
	}
	return r[i], true
}

// Bool reads a boolean column.
func (r Record) Bool(i int) (bool, bool) {
	v, ok := r.value(i)
	if !ok {
		return false, false
	}
	switch v := v.(type) {
	case bool:
		return v, true
	case int64:
		return v != 0, true
	case []byte:
		b, err := strconv.ParseBool(string(v))
		return b, err == nil
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}
	return false, false
}

// Int64 reads an integer column.
func (r Record) Int64(i int) (int64, bool) {
	v, ok := r.value(i)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Int32 reads a 32-bit integer column. Values out of the int32 range
// report false.
func (r Record) Int32(i int) (int32, bool) {
	n, ok := r.Int64(i)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

// Float64 reads a floating point column.
func (r Record) Float64(i int) (float64, bool) {
	v, ok := r.value(i)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Float32 reads a single precision column.
func (r Record) Float32(i int) (float32, bool) {
	f, ok := r.Float64(i)
	return float32(f), ok
}

// Decimal reads a numeric column.
func (r Record) Decimal(i int) (decimal.Decimal, bool) {
	v, ok := r.value(i)
	if !ok {
		return decimal.Decimal{}, false
	}
	switch v := v.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case []byte:
		d, err := decimal.NewFromString(string(v))
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// String reads a text column.
func (r Record) String(i int) (string, bool) {
	v, ok := r.value(i)
	if !ok {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(v), true
	}
}

// timeLayouts are tried in order for timestamps stored as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Time reads a timestamp column.
func (r Record) Time(i int) (time.Time, bool) {
	v, ok := r.value(i)
	if !ok {
		return time.Time{}, false
	}
	var s string
	switch v := v.(type) {
	case time.Time:
		return v, true
	case []byte:
		s = string(v)
	case string:
		s = v
	case int64:
		return time.Unix(v, 0).UTC(), true
	default:
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UUID reads a UUID column stored as text or as 16 raw bytes.
func (r Record) UUID(i int) (uuid.UUID, bool) {
	v, ok := r.value(i)
	if !ok {
		return uuid.Nil, false
	}
	switch v := v.(type) {
	case [16]byte:
		return uuid.UUID(v), true
	case []byte:
		if len(v) == 16 {
			u, err := uuid.FromBytes(v)
			return u, err == nil
		}
		u, err := uuid.ParseBytes(v)
		return u, err == nil
	case string:
		u, err := uuid.Parse(v)
		return u, err == nil
	}
	return uuid.Nil, false
}
