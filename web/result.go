package web

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/syssam/csr"
	"github.com/syssam/csr/jsonx"
)

// Logger logs handler failures. It defaults to the standard logger writing to stderr.
var Logger interface {
	Printf(format string, args ...any)
} = log.New(os.Stderr, "csr: ", log.LstdFlags)

// Result is the outcome of a controller action. Exactly one of Body, Text
// and Data is written; a Result without any writes only its status.
type Result struct {
	Status      int
	Header      http.Header
	Body        jsonx.Marshaler
	Text        *string
	ContentType string
	Data        []byte
}

// JSON returns a result writing body as JSON.
func JSON(status int, body jsonx.Marshaler) *Result {
	return &Result{Status: status, Body: body}
}

// OK returns a 200 result writing body as JSON.
func OK(body jsonx.Marshaler) *Result {
	return JSON(http.StatusOK, body)
}

// Text returns a plain text result.
func Text(status int, s string) *Result {
	return &Result{Status: status, Text: &s}
}

// Raw returns a result writing data with the given content type.
func Raw(status int, contentType string, data []byte) *Result {
	return &Result{Status: status, ContentType: contentType, Data: data}
}

// Status returns a result without body.
func Status(code int) *Result {
	return &Result{Status: code}
}

// WithHeader adds a response header.
func (r *Result) WithHeader(key, value string) *Result {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Add(key, value)
	return r
}

// Output writes res to the response. A nil result answers 204.
func Output(c *gin.Context, res *Result) {
	if res == nil {
		c.Status(http.StatusNoContent)
		return
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	for k, vs := range res.Header {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	switch {
	case res.Body != nil:
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Status(status)
		if err := jsonx.Encode(c.Writer, res.Body); err != nil {
			_ = c.Error(err)
		}
	case res.Text != nil:
		c.Data(status, "text/plain; charset=utf-8", []byte(*res.Text))
	case res.Data != nil:
		ct := res.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		c.Data(status, ct, res.Data)
	default:
		c.Status(status)
	}
}

// StatusCoder is implemented by errors that carry their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// errorBody is the JSON body of failed requests.
type errorBody struct {
	message   string
	requestID string
}

func (e *errorBody) EncodeJSON(w *jsonx.Writer) {
	w.RawByte('{')
	w.Key(0, "error")
	w.String(e.message)
	if e.requestID != "" {
		w.Key(1, "requestId")
		w.String(e.requestID)
	}
	w.RawByte('}')
}

// Fail answers err. Missing and invalid request values answer 400, errors
// implementing StatusCoder answer their status, anything else answers 500
// and is logged.
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var sc StatusCoder
	switch {
	case csr.IsMissingValue(err), csr.IsInvalidValue(err):
		status = http.StatusBadRequest
	case errors.As(err, &sc):
		status = sc.StatusCode()
	}
	id := RequestIDFrom(c)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		Logger.Printf("%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, id, err)
		msg = http.StatusText(status)
	}
	_ = c.Error(err)
	Output(c, JSON(status, &errorBody{message: msg, requestID: id}))
	c.Abort()
}
