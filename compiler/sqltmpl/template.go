// Package sqltmpl compiles the SQL text of mapper methods.
//
// A template is SQL with two extensions: conditional regions
//
//	#if{name != null} AND name = #{name} #endif
//
// whose body is appended only when the Go condition holds, and placeholders
// #{name} or #{name,type=varchar} naming the bound value and an optional
// dialect type hint. Compile rewrites every placeholder to a positional
// marker @_<seq>, numbered from 0 across the whole template, strips line
// comments and collapses whitespace outside quoted literals.
package sqltmpl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/csr/dialect"
)

// ErrSyntax is matched by every *SyntaxError.
var ErrSyntax = errors.New("sqltmpl: syntax error")

// SyntaxError reports a malformed template.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("sqltmpl: %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

func newSyntaxError(src string, pos int, format string, args ...any) *SyntaxError {
	line := strings.Count(src[:pos], "\n") + 1
	col := pos - strings.LastIndexByte(src[:pos], '\n')
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// Param is a placeholder of a template.
type Param struct {
	// Name is the bound expression: a parameter name or a selector on one.
	Name string
	// Seq is the marker number, unique within the template.
	Seq int
	// Hint is the raw type hint, "" if absent.
	Hint string
	// Type is the hint resolved against the dialect table.
	Type dialect.Type
}

// Root returns the parameter name the placeholder starts with.
func (p Param) Root() string {
	if i := strings.IndexByte(p.Name, '.'); i >= 0 {
		return p.Name[:i]
	}
	return p.Name
}

// Block is a fragment of a template.
type Block struct {
	// Cond is the normalized Go condition guarding the block, "" for
	// unconditional text.
	Cond   string
	Text   string
	Params []Param
}

// Conditional reports whether the block is guarded.
func (b Block) Conditional() bool { return b.Cond != "" }

// Template is a compiled template.
type Template struct {
	Dialect string
	Blocks  []Block
}

// Static reports whether the template compiles to one unconditional text.
func (t *Template) Static() bool {
	return len(t.Blocks) == 1 && !t.Blocks[0].Conditional()
}

// Params returns the parameters of all blocks in sequence order.
func (t *Template) Params() []Param {
	var ps []Param
	for _, b := range t.Blocks {
		ps = append(ps, b.Params...)
	}
	return ps
}

// Text returns the text of all blocks joined by a space, as if every
// condition held.
func (t *Template) Text() string {
	texts := make([]string, len(t.Blocks))
	for i, b := range t.Blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, " ")
}

// Marker returns the positional marker of the given sequence number.
func Marker(seq int) string { return "@_" + strconv.Itoa(seq) }

// Compile compiles src for the given dialect. Nested or unterminated #if
// regions, a stray #endif, empty placeholders and invalid conditions are
// syntax errors. Unknown type hints resolve to dialect.TypeUnknown.
func Compile(dialectName, src string) (*Template, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	c := &compiler{src: src, dialect: dialect.Normalize(dialectName), open: -1}
	for _, tok := range toks {
		if err := c.step(tok); err != nil {
			return nil, err
		}
	}
	if c.open >= 0 {
		return nil, newSyntaxError(src, c.open, "#if without #endif")
	}
	c.flush()
	return &Template{Dialect: c.dialect, Blocks: c.blocks}, nil
}

type compiler struct {
	src     string
	dialect string
	seq     int
	// open is the position of the enclosing #if, -1 outside regions.
	open   int
	cond   string
	text   strings.Builder
	params []Param
	blocks []Block
}

func (c *compiler) step(tok lexeme) error {
	switch tok.kind {
	case tokText:
		c.text.WriteString(tok.val)
	case tokParam:
		p, err := c.param(tok)
		if err != nil {
			return err
		}
		c.params = append(c.params, p)
		c.text.WriteString(Marker(p.Seq))
	case tokIf:
		if c.open >= 0 {
			return newSyntaxError(c.src, tok.pos, "nested #if")
		}
		cond, err := normalizeCond(tok.val)
		if err != nil {
			return newSyntaxError(c.src, tok.pos, "invalid condition %q: %v", strings.TrimSpace(tok.val), err)
		}
		c.flush()
		c.open, c.cond = tok.pos, cond
	case tokEndif:
		if c.open < 0 {
			return newSyntaxError(c.src, tok.pos, "#endif without #if")
		}
		c.flush()
		c.open, c.cond = -1, ""
	}
	return nil
}

func (c *compiler) param(tok lexeme) (Param, error) {
	body := strings.TrimSpace(tok.val)
	n := 0
	for n < len(body) && isNameByte(body[n]) {
		n++
	}
	if n == 0 {
		return Param{}, newSyntaxError(c.src, tok.pos, "placeholder without a name")
	}
	p := Param{Name: body[:n], Seq: c.seq}
	if i := strings.Index(body[n:], "type="); i >= 0 {
		h := body[n+i+len("type="):]
		j := 0
		for j < len(h) && isHintByte(h[j]) {
			j++
		}
		p.Hint = h[:j]
		p.Type = dialect.ResolveType(c.dialect, p.Hint)
	}
	c.seq++
	return p, nil
}

// flush closes the current block. Unconditional blocks merge with a
// preceding unconditional block; blocks without text are dropped.
func (c *compiler) flush() {
	text := clean(c.text.String())
	params := c.params
	c.text.Reset()
	c.params = nil
	if text == "" {
		return
	}
	if n := len(c.blocks); c.cond == "" && n > 0 && !c.blocks[n-1].Conditional() {
		last := &c.blocks[n-1]
		last.Text += " " + text
		last.Params = append(last.Params, params...)
		return
	}
	c.blocks = append(c.blocks, Block{Cond: c.cond, Text: text, Params: params})
}

func isNameByte(c byte) bool {
	return c == '_' || c == '.' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isHintByte(c byte) bool {
	return c != '.' && isNameByte(c)
}

// clean strips -- comments and collapses whitespace runs to one space,
// leaving quoted literals intact, and trims the result.
func clean(s string) string {
	var (
		b     strings.Builder
		quote byte
		space bool
	)
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				b.WriteByte(s[i])
			case c == quote && i+1 < len(s) && s[i+1] == quote:
				i++
				b.WriteByte(s[i])
			case c == quote:
				quote = 0
			}
			continue
		}
		switch {
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			space = true
			continue
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			space = true
			continue
		case c == '\'' || c == '"':
			quote = c
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteByte(c)
	}
	return b.String()
}
