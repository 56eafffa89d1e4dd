package jsonx

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TimeLayout is the layout of encoded timestamps: ISO 8601 with
// milliseconds and a numeric offset.
const TimeLayout = "2006-01-02T15:04:05.000-07:00"

// Marshaler is implemented by generated to-json types.
type Marshaler interface {
	EncodeJSON(w *Writer)
}

// Writer writes JSON tokens to an underlying byte sink. Write errors are
// sticky and reported by Flush.
type Writer struct {
	w   *bufio.Writer
	buf []byte
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), buf: make([]byte, 0, 64)}
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }

// RawByte writes c verbatim.
func (w *Writer) RawByte(c byte) { _ = w.w.WriteByte(c) }

// RawString writes s verbatim.
func (w *Writer) RawString(s string) { _, _ = w.w.WriteString(s) }

// Key writes the separating comma when n fields were written before, then
// the quoted key and a colon.
func (w *Writer) Key(n int, key string) {
	if n > 0 {
		w.RawByte(',')
	}
	w.String(key)
	w.RawByte(':')
}

// Comma writes a separating comma when i > 0.
func (w *Writer) Comma(i int) {
	if i > 0 {
		w.RawByte(',')
	}
}

// Null writes null.
func (w *Writer) Null() { w.RawString("null") }

// Bool writes a boolean.
func (w *Writer) Bool(v bool) {
	w.buf = strconv.AppendBool(w.buf[:0], v)
	_, _ = w.w.Write(w.buf)
}

// Int writes an integer.
func (w *Writer) Int(v int) { w.Int64(int64(v)) }

// Int32 writes a 32-bit integer.
func (w *Writer) Int32(v int32) { w.Int64(int64(v)) }

// Int64 writes a 64-bit integer.
func (w *Writer) Int64(v int64) {
	w.buf = strconv.AppendInt(w.buf[:0], v, 10)
	_, _ = w.w.Write(w.buf)
}

// Float32 writes a single precision number.
func (w *Writer) Float32(v float32) { w.float(float64(v), 32) }

// Float64 writes a double precision number.
func (w *Writer) Float64(v float64) { w.float(v, 64) }

// float formats like encoding/json; NaN and infinities have no JSON
// representation and are written as null.
func (w *Writer) float(f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.Null()
		return
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	w.buf = strconv.AppendFloat(w.buf[:0], f, format, -1, bits)
	_, _ = w.w.Write(w.buf)
}

// Decimal writes a decimal as a JSON number.
func (w *Writer) Decimal(v decimal.Decimal) { w.RawString(v.String()) }

// Time writes a quoted timestamp in TimeLayout.
func (w *Writer) Time(v time.Time) {
	w.RawByte('"')
	w.buf = v.AppendFormat(w.buf[:0], TimeLayout)
	_, _ = w.w.Write(w.buf)
	w.RawByte('"')
}

// UUID writes a quoted UUID in its canonical hyphenated form.
func (w *Writer) UUID(v uuid.UUID) {
	w.RawByte('"')
	w.RawString(v.String())
	w.RawByte('"')
}

// String writes a quoted, escaped string.
func (w *Writer) String(s string) {
	w.RawByte('"')
	w.RawString(Escape(s))
	w.RawByte('"')
}

// Escape escapes backslash, quote and control characters. The result is
// the one of replacing `\` first, then `"`, then backspace, formfeed,
// newline, carriage return and tab by their short escapes; the remaining
// control characters use \u00XX.
func Escape(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; c == '\\' || c == '"' || c < 0x20 {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := make([]byte, 0, len(s)+8)
	b = append(b, s[:i]...)
	for ; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b = append(b, '\\', '\\')
		case '"':
			b = append(b, '\\', '"')
		case '\b':
			b = append(b, '\\', 'b')
		case '\f':
			b = append(b, '\\', 'f')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			if c < 0x20 {
				const hex = "0123456789abcdef"
				b = append(b, '\\', 'u', '0', '0', hex[c>>4], hex[c&0xf])
				continue
			}
			b = append(b, c)
		}
	}
	return string(b)
}

// Marshal encodes m into a new byte slice.
func Marshal(m Marshaler) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes m to w. Nothing follows the encoded value.
func Encode(w io.Writer, m Marshaler) error {
	jw := NewWriter(w)
	if m == nil {
		jw.Null()
	} else {
		m.EncodeJSON(jw)
	}
	return jw.Flush()
}

// SliceOf returns a Marshaler writing items as a JSON array. A nil slice is
// written as [].
func SliceOf[T any, P interface {
	*T
	Marshaler
}](items []T) Marshaler {
	return slice[T, P](items)
}

type slice[T any, P interface {
	*T
	Marshaler
}] []T

func (s slice[T, P]) EncodeJSON(w *Writer) {
	w.RawByte('[')
	for i := range s {
		w.Comma(i)
		P(&s[i]).EncodeJSON(w)
	}
	w.RawByte(']')
}
