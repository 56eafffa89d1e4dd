package load

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/syssam/csr/compiler/decl"
)

// parseComments splits a doc comment into its prose and its //csr:
// markers. SQL markers take the rest of their line and the following
// comment lines, up to the next marker, as their statement text.
func parseComments(cg *ast.CommentGroup, pos func(token.Pos) string) (string, []*decl.Directive) {
	if cg == nil {
		return "", nil
	}
	var (
		doc  []string
		dirs []*decl.Directive
		sql  *decl.Directive
		body []string
	)
	closeSQL := func() {
		if sql != nil {
			sql.Body = strings.TrimSpace(strings.Join(body, "\n"))
			sql, body = nil, nil
		}
	}
	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, "//") {
			closeSQL()
			doc = append(doc, blockLines(c.Text)...)
			continue
		}
		if strings.HasPrefix(c.Text, decl.DirectivePrefix) {
			closeSQL()
			name, rest := strings.TrimSpace(c.Text[len(decl.DirectivePrefix):]), ""
			if i := strings.IndexAny(name, " \t"); i >= 0 {
				name, rest = name[:i], name[i+1:]
			}
			d := &decl.Directive{Name: name, Pos: pos(c.Pos())}
			if decl.IsSQL(d.Name) {
				sql, body = d, []string{rest}
			} else {
				d.Args = strings.Fields(rest)
			}
			dirs = append(dirs, d)
			continue
		}
		line := strings.TrimPrefix(c.Text[2:], " ")
		if sql != nil {
			body = append(body, line)
			continue
		}
		if !strings.HasPrefix(c.Text, "//go:") && !strings.HasPrefix(c.Text, "//nolint") {
			doc = append(doc, line)
		}
	}
	closeSQL()
	return strings.TrimSpace(strings.Join(doc, "\n")), dirs
}

func blockLines(text string) []string {
	text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}
