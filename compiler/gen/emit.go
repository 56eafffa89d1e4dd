package gen

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/syssam/csr/compiler/decl"
)

// Import paths of the runtime packages generated code uses.
const (
	csrPkg     = "github.com/syssam/csr"
	dialectPkg = "github.com/syssam/csr/dialect"
	sqlPkg     = "github.com/syssam/csr/dialect/sql"
	jsonxPkg   = "github.com/syssam/csr/jsonx"
	webPkg     = "github.com/syssam/csr/web"
	ginPkg     = "github.com/gin-gonic/gin"
	stdSQLPkg  = "database/sql"
)

// emitter builds the generated file of one declaration.
type emitter struct {
	cfg *Config
	d   *decl.Declaration
	f   *jen.File
}

func newEmitter(cfg *Config, d *decl.Declaration) *emitter {
	f := jen.NewFilePathName(d.PkgPath, d.PkgName)
	f.HeaderComment(cfg.Header)
	return &emitter{cfg: cfg, d: d, f: f}
}

// errorf returns a DeclarationError on member (or on the declaration itself
// when member is nil).
func (e *emitter) errorf(m *decl.Member, format string, args ...any) *DeclarationError {
	err := NewDeclarationError(e.d.FullName(), "", fmt.Sprintf(format, args...), nil)
	err.Pos = e.d.Pos
	if m != nil {
		err.Member, err.Pos = m.Name, m.Pos
	}
	return err
}

// typeCode returns the Go type of t.
func typeCode(t *decl.Type) *jen.Statement {
	switch t.Shape {
	case decl.ShapeNullable:
		return jen.Op("*").Add(typeCode(t.Elem))
	case decl.ShapeList:
		if t.Len >= 0 {
			return jen.Index(jen.Lit(t.Len)).Add(typeCode(t.Elem))
		}
		return jen.Index().Add(typeCode(t.Elem))
	case decl.ShapeResult:
		return typeCode(t.Elem)
	case decl.ShapeOther:
		return jen.Id(t.Expr)
	}
	if t.IsError() {
		return jen.Error()
	}
	if t.PkgPath == "" {
		return jen.Id(t.Name)
	}
	return jen.Qual(t.PkgPath, t.Name)
}

// kindCode returns the Go type values of kind k are read as.
func kindCode(k decl.ScalarKind) *jen.Statement {
	return typeCode(decl.ScalarOf(k))
}

// convert wraps v into a conversion to t when t is a named scalar or when
// v is read with a wider Go type than t.
func convert(t *decl.Type, v jen.Code, readAs decl.ScalarKind) jen.Code {
	if t.Converted() || t.Scalar != readAs {
		return typeCode(t).Call(v)
	}
	return v
}

// accessor returns the method name reading kind k from jsonx and web values.
func accessor(k decl.ScalarKind) string {
	switch k {
	case decl.KindBool:
		return "Bool"
	case decl.KindInt:
		return "Int"
	case decl.KindInt32:
		return "Int32"
	case decl.KindInt64:
		return "Int64"
	case decl.KindFloat32:
		return "Float32"
	case decl.KindFloat64:
		return "Float64"
	case decl.KindDecimal:
		return "Decimal"
	case decl.KindString:
		return "String"
	case decl.KindTime:
		return "Time"
	case decl.KindUUID:
		return "UUID"
	}
	return ""
}

// signature returns the parameter list and the results of a method.
func signature(m *decl.Member) ([]jen.Code, jen.Code) {
	params := make([]jen.Code, len(m.Params))
	for i, p := range m.Params {
		params[i] = jen.Id(p.Name).Add(typeCode(p.Type))
	}
	switch len(m.Results) {
	case 0:
		return params, jen.Null()
	case 1:
		return params, typeCode(m.Results[0])
	}
	rs := make([]jen.Code, len(m.Results))
	for i, r := range m.Results {
		rs[i] = typeCode(r)
	}
	return params, jen.Params(rs...)
}

// exportName upper-cases the first letter of name.
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// lowerName lower-cases the first letter of name.
func lowerName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

// pluralName returns the plural used by Scan<Plural>, falling back to
// <Name>List when the plural form equals the singular one.
func pluralName(name string) string {
	p := inflect.Pluralize(name)
	if p == name {
		return name + "List"
	}
	return p
}

// decodeFunc returns the decoder of the named type t.
func decodeFunc(t *decl.Type) *jen.Statement {
	return jen.Qual(t.PkgPath, "Decode"+exportName(t.Name))
}

// scope hands out local identifiers that do not collide with the
// parameters of a generated function.
type scope map[string]bool

func newScope(ps []*decl.Param) scope {
	s := make(scope, len(ps))
	for _, p := range ps {
		s[p.Name] = true
	}
	return s
}

func (s scope) name(n string) string {
	for s[n] {
		n += "_"
	}
	s[n] = true
	return n
}
