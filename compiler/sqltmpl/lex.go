package sqltmpl

import "strings"

type lexemeKind uint8

const (
	tokText lexemeKind = iota
	tokIf
	tokEndif
	tokParam
)

// lexeme is one token of a template. val holds the text, the condition of
// an #if or the body of a placeholder.
type lexeme struct {
	kind lexemeKind
	val  string
	pos  int
}

const (
	openIf    = "#if{"
	closeIf   = "#endif"
	openParam = "#{"
)

// lex splits src into text, #if, #endif and placeholder tokens in a single
// pass. Quoted literals and line comments are copied as text without being
// scanned for directives.
func lex(src string) ([]lexeme, error) {
	var (
		toks  []lexeme
		start int
		quote byte
	)
	flush := func(end int) {
		if end > start {
			toks = append(toks, lexeme{kind: tokText, val: src[start:end], pos: start})
		}
	}
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case quote != 0:
			switch {
			case c == '\\':
				i += 2
			case c == quote && i+1 < len(src) && src[i+1] == quote:
				i += 2
			default:
				if c == quote {
					quote = 0
				}
				i++
			}
		case c == '\'' || c == '"':
			quote = c
			i++
		case c == '-' && strings.HasPrefix(src[i:], "--"):
			if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(src)
			}
		case c != '#':
			i++
		case strings.HasPrefix(src[i:], openIf):
			end := closing(src, i+len(openIf))
			if end < 0 {
				return nil, newSyntaxError(src, i, "unterminated #if condition")
			}
			flush(i)
			toks = append(toks, lexeme{kind: tokIf, val: src[i+len(openIf) : end], pos: i})
			i, start = end+1, end+1
		case strings.HasPrefix(src[i:], closeIf):
			flush(i)
			toks = append(toks, lexeme{kind: tokEndif, pos: i})
			i += len(closeIf)
			start = i
		case strings.HasPrefix(src[i:], openParam):
			end := closing(src, i+len(openParam))
			if end < 0 {
				return nil, newSyntaxError(src, i, "unterminated placeholder")
			}
			flush(i)
			toks = append(toks, lexeme{kind: tokParam, val: src[i+len(openParam) : end], pos: i})
			i, start = end+1, end+1
		default:
			i++
		}
	}
	flush(len(src))
	return toks, nil
}

// closing returns the index of the brace closing the one opened right
// before from, or -1. Nested braces and Go string literals are skipped.
func closing(src string, from int) int {
	depth := 0
	for i := from; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		case '"', '\'', '`':
			for i++; i < len(src) && src[i] != c; i++ {
				if src[i] == '\\' && c != '`' {
					i++
				}
			}
		case '\n':
			return -1
		}
	}
	return -1
}
