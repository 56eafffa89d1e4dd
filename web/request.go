package web

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/syssam/csr"
	"github.com/syssam/csr/jsonx"
)

// Route returns the route parameter key, or nil when absent.
func Route(c *gin.Context, key string) *string {
	v, ok := c.Params.Get(key)
	if !ok {
		return nil
	}
	return &v
}

// Query returns the first query value of key, or nil when absent.
func Query(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

// QueryAll returns every query value of key.
func QueryAll(c *gin.Context, key string) []string {
	return c.QueryArray(key)
}

// Header returns the first value of the request header key, or nil when absent.
func Header(c *gin.Context, key string) *string {
	vs := c.Request.Header.Values(key)
	if len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// HeaderAll returns every value of the request header key, splitting
// comma-separated values.
func HeaderAll(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.Request.Header.Values(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Context returns the request context.
func Context(c *gin.Context) context.Context {
	return c.Request.Context()
}

// Parser converts the text of a request value.
type Parser[T any] struct {
	Type  string
	Parse func(string) (T, error)
}

// Parsers of the basic kinds.
var (
	String  = Parser[string]{Type: "string", Parse: func(s string) (string, error) { return s, nil }}
	Bool    = Parser[bool]{Type: "boolean", Parse: strconv.ParseBool}
	Int     = Parser[int]{Type: "integer", Parse: strconv.Atoi}
	Int32   = Parser[int32]{Type: "integer", Parse: parseInt32}
	Int64   = Parser[int64]{Type: "integer", Parse: func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }}
	Float32 = Parser[float32]{Type: "number", Parse: parseFloat32}
	Float64 = Parser[float64]{Type: "number", Parse: func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }}
	Decimal = Parser[decimal.Decimal]{Type: "decimal", Parse: decimal.NewFromString}
	Time    = Parser[time.Time]{Type: "timestamp", Parse: parseTime}
	UUID    = Parser[uuid.UUID]{Type: "uuid", Parse: uuid.Parse}
)

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if d, derr := time.Parse("2006-01-02", s); derr == nil {
		return d, nil
	}
	return time.Time{}, err
}

// Required converts a required value. An absent value is a
// MissingValueError, an unconvertible one an InvalidValueError; both name
// the parameter.
func Required[T any](raw *string, name string, p Parser[T]) (T, error) {
	var zero T
	if raw == nil {
		return zero, csr.NewMissingValueError(name)
	}
	v, err := p.Parse(*raw)
	if err != nil {
		return zero, csr.NewInvalidValueError(name, *raw, p.Type, err)
	}
	return v, nil
}

// Optional converts an optional value; an absent value converts to nil.
func Optional[T any](raw *string, name string, p Parser[T]) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := p.Parse(*raw)
	if err != nil {
		return nil, csr.NewInvalidValueError(name, *raw, p.Type, err)
	}
	return &v, nil
}

// List converts every value of a repeated parameter.
func List[T any](raw []string, name string, p Parser[T]) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, s := range raw {
		v, err := p.Parse(s)
		if err != nil {
			return nil, csr.NewInvalidValueError(name, s, p.Type, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// RequiredList is like List but an empty list is a MissingValueError.
func RequiredList[T any](raw []string, name string, p Parser[T]) ([]T, error) {
	if len(raw) == 0 {
		return nil, csr.NewMissingValueError(name)
	}
	return List(raw, name, p)
}

// Body decodes the JSON request body with decode. An empty or null body
// is a MissingValueError.
func Body[T any](c *gin.Context, name string, decode func(jsonx.Node) T) (T, error) {
	var zero T
	doc, err := readBody(c, name)
	if err != nil {
		return zero, err
	}
	if doc.IsNull() {
		return zero, csr.NewMissingValueError(name)
	}
	return decode(doc), nil
}

// OptionalBody is like Body but an empty or null body decodes to nil.
func OptionalBody[T any](c *gin.Context, name string, decode func(jsonx.Node) T) (*T, error) {
	doc, err := readBody(c, name)
	if err != nil || doc.IsNull() {
		return nil, err
	}
	v := decode(doc)
	return &v, nil
}

func readBody(c *gin.Context, name string) (jsonx.Node, error) {
	if c.Request.Body == nil {
		return jsonx.Node{}, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return jsonx.Node{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return jsonx.Node{}, nil
	}
	doc, err := jsonx.Parse(data)
	if err != nil {
		return jsonx.Node{}, csr.NewInvalidValueError(name, truncate(string(data), 64), "json", err)
	}
	return doc, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

const requestIDKey = "csr.request_id"

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-Id"

// RequestID returns a middleware assigning every request an id. An id
// sent by the client is kept; otherwise a new ULID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
