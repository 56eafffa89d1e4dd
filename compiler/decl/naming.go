package decl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SnakeCase converts a Go identifier to snake case: the leading character
// is lowercased, an underscore is inserted before each run of uppercase
// letters and the result is lowercased. "CreatedAt" becomes "created_at",
// "UserID" becomes "user_id" and "ID" becomes "i_d".
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	b.WriteRune(unicode.ToLower(first))
	prevUpper := false
	for _, r := range s[size:] {
		upper := unicode.IsUpper(r)
		if upper && !prevUpper {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		prevUpper = upper
	}
	return b.String()
}

// DigitSplit inserts an underscore between a letter and an immediately
// following digit: "address2" becomes "address_2".
func DigitSplit(s string) string {
	var (
		b    strings.Builder
		prev rune
	)
	b.Grow(len(s) + 2)
	for i, r := range s {
		if i > 0 && unicode.IsDigit(r) && unicode.IsLetter(prev) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// ColumnCandidates returns the column names a member is looked up by, most
// specific first. A `db` tag override is the only candidate; otherwise the
// candidates are the member name, its snake case and the digit-split snake
// case, without duplicates.
func ColumnCandidates(m *Member) []string {
	if m.Column != "" {
		return []string{m.Column}
	}
	snake := SnakeCase(m.Name)
	names := []string{m.Name}
	for _, c := range []string{snake, DigitSplit(snake)} {
		if !slices.Contains(names, c) {
			names = append(names, c)
		}
	}
	return names
}
