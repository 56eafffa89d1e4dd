// Package decl is the declaration model of csrgen: the normalized view of
// annotated Go types that the generator works on, independent of go/ast.
package decl

import (
	"sort"
	"strings"
)

// Role is a generation role. A declaration carries a set of roles.
type Role uint8

// Roles, in the order their markers are documented.
const (
	RoleService Role = 1 << iota
	RoleController
	RoleToJSON
	RoleFromJSON
	RoleEntity
	RoleMapper

	// RoleJSON is the codec role in both directions.
	RoleJSON = RoleToJSON | RoleFromJSON
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleService, "service"},
	{RoleController, "controller"},
	{RoleToJSON, "tojson"},
	{RoleFromJSON, "fromjson"},
	{RoleEntity, "entity"},
	{RoleMapper, "mapper"},
}

// Has reports whether every role of r2 is in r.
func (r Role) Has(r2 Role) bool { return r2 != 0 && r&r2 == r2 }

// Any reports whether some role of r2 is in r.
func (r Role) Any(r2 Role) bool { return r&r2 != 0 }

// String returns the roles joined by "|".
func (r Role) String() string {
	var names []string
	for _, rn := range roleNames {
		if r&rn.role != 0 {
			names = append(names, rn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Kind is the kind of a declared type.
type Kind uint8

// Declaration kinds.
const (
	Struct Kind = iota
	Interface
)

func (k Kind) String() string {
	if k == Interface {
		return "interface"
	}
	return "struct"
}

// Well-known argument names.
const (
	ArgRoute   = "route"
	ArgDialect = "dialect"
)

// Declaration is an annotated named type.
type Declaration struct {
	Name     string
	PkgPath  string
	PkgName  string
	Dir      string
	File     string // base name of the declaring file
	Pos      string // file:line of the declaration, for messages
	Kind     Kind
	Exported bool
	Roles    Role
	Args     map[string]string
	Doc      string
	Members  []*Member
	Base     *Base
	// Ctor is the New<Name> function of the declaring package, if any.
	Ctor *Func
	// Problems lists the malformed annotations found by the loader.
	Problems []string
}

// Arg returns the argument key, or "".
func (d *Declaration) Arg(key string) string {
	if d.Args == nil {
		return ""
	}
	return d.Args[key]
}

// FullName returns "<import path>.<Name>".
func (d *Declaration) FullName() string {
	return d.PkgPath + "." + d.Name
}

// Fields returns the field members of the declaration itself.
func (d *Declaration) Fields() []*Member {
	return d.members(FieldMember)
}

// Methods returns the method members of the declaration itself.
func (d *Declaration) Methods() []*Member {
	return d.members(MethodMember)
}

func (d *Declaration) members(k MemberKind) []*Member {
	var ms []*Member
	for _, m := range d.Members {
		if m.Kind == k {
			ms = append(ms, m)
		}
	}
	return ms
}

// Base is one layer of a base chain: a struct embedded by value. Depth is
// the embedding depth, 1 for structs embedded by the declaration itself.
// Structs embedded at the same depth follow each other in the chain, in
// declaration order.
type Base struct {
	Name    string
	PkgPath string
	Depth   int
	Members []*Member
	Base    *Base
}

// MemberKind is the kind of a member.
type MemberKind uint8

// Member kinds.
const (
	FieldMember MemberKind = iota
	MethodMember
)

// Member is a field or a method of a declaration.
type Member struct {
	Name     string
	Kind     MemberKind
	Exported bool
	// Type is the field type. Methods use Params and Results instead.
	Type *Type
	// JSONName and Column are the `json` and `db` tag names, "" if absent.
	JSONName   string
	Column     string
	SkipJSON   bool
	SkipColumn bool
	Doc        string
	Params     []*Param
	Results    []*Type
	Directives []*Directive
	Pos        string
}

// HasGetter reports whether the member can be read. Fields always can.
func (m *Member) HasGetter() bool { return m.Kind == FieldMember }

// HasSetter reports whether the member can be assigned. Fields always can.
func (m *Member) HasSetter() bool { return m.Kind == FieldMember }

// Directive returns the first directive with the given name.
func (m *Member) Directive(name string) *Directive {
	for _, d := range m.Directives {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Param returns the parameter with the given name.
func (m *Member) Param(name string) *Param {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Return returns the descriptor of the method results: nil for none,
// ErrorType for a lone error, a Result for (T, error) and the type itself
// for a single non-error result.
func (m *Member) Return() *Type {
	switch n := len(m.Results); {
	case n == 0:
		return nil
	case n == 1:
		return m.Results[0]
	case n == 2 && m.Results[1].IsError():
		return ResultOf(m.Results[0])
	default:
		return OtherOf("multiple results")
	}
}

// Key returns the codec key of the member: its `json` tag name or its name.
func (m *Member) Key() string {
	if m.JSONName != "" {
		return m.JSONName
	}
	return m.Name
}

// Source is the binding source of a controller parameter.
type Source uint8

// Binding sources. SourceAuto infers the source from the route and the type.
const (
	SourceAuto Source = iota
	SourceRoute
	SourceQuery
	SourceHeader
	SourceBody
	SourceContext
)

var sourceNames = [...]string{"auto", "route", "query", "header", "body", "context"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "unknown"
}

// ParseSource parses a binding source name.
func ParseSource(s string) (Source, bool) {
	for i, name := range sourceNames {
		if strings.EqualFold(name, s) {
			return Source(i), true
		}
	}
	return SourceAuto, false
}

// Param is a method or constructor parameter.
type Param struct {
	Name   string
	Type   *Type
	Source Source
	// Key is the route, query or header name; defaults to Name.
	Key string
}

// BindKey returns the key the parameter is read by.
func (p *Param) BindKey() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// Func is a constructor function.
type Func struct {
	Name    string
	Params  []*Param
	Results []*Type
}

// ReturnsError reports whether the last result is an error.
func (f *Func) ReturnsError() bool {
	return len(f.Results) > 0 && f.Results[len(f.Results)-1].IsError()
}

// Sort orders declarations by package path and name so that every pass
// visits them in the same order.
func Sort(decls []*Declaration) {
	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].PkgPath != decls[j].PkgPath {
			return decls[i].PkgPath < decls[j].PkgPath
		}
		return decls[i].Name < decls[j].Name
	})
}
