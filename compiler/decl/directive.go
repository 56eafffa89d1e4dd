package decl

// Directive names. Declaration markers select roles; method markers
// describe routes, parameter bindings and SQL statements.
const (
	DirService    = "service"
	DirController = "controller"
	DirJSON       = "json"
	DirToJSON     = "tojson"
	DirFromJSON   = "fromjson"
	DirEntity     = "entity"
	DirMapper     = "mapper"

	DirHTTP  = "http"
	DirParam = "param"

	DirSelect = "select"
	DirInsert = "insert"
	DirUpdate = "update"
	DirDelete = "delete"
	DirExec   = "exec"
)

// DirectivePrefix starts every directive comment.
const DirectivePrefix = "//csr:"

// RoleOf returns the role selected by a declaration marker.
func RoleOf(name string) (Role, bool) {
	switch name {
	case DirService:
		return RoleService, true
	case DirController:
		return RoleController, true
	case DirJSON:
		return RoleJSON, true
	case DirToJSON:
		return RoleToJSON, true
	case DirFromJSON:
		return RoleFromJSON, true
	case DirEntity:
		return RoleEntity, true
	case DirMapper:
		return RoleMapper, true
	}
	return 0, false
}

// IsSQL reports whether name is a SQL statement marker. The text of
// these markers is their Body.
func IsSQL(name string) bool {
	switch name {
	case DirSelect, DirInsert, DirUpdate, DirDelete, DirExec:
		return true
	}
	return false
}

// Directive is a `//csr:<name> <args>` comment attached to a declaration
// or a method. Body holds the SQL text of statement markers: the rest of
// the marker line and the comment lines following it.
type Directive struct {
	Name string
	Args []string
	Body string
	Pos  string
}

// Arg returns the i-th argument, or "".
func (d *Directive) Arg(i int) string {
	if i < len(d.Args) {
		return d.Args[i]
	}
	return ""
}

// SQL returns the first SQL statement marker of m, or nil.
func (m *Member) SQL() *Directive {
	for _, d := range m.Directives {
		if IsSQL(d.Name) {
			return d
		}
	}
	return nil
}
