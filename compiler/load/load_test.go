package load

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/csr/compiler/decl"
)

const appPkg = "github.com/syssam/csr/compiler/load/testdata/app"

func loadApp(t *testing.T) map[string]*decl.Declaration {
	t.Helper()
	decls, err := (&Config{Dir: "testdata/app"}).Load(".")
	require.NoError(t, err)
	byName := make(map[string]*decl.Declaration)
	var names []string
	for _, d := range decls {
		byName[d.Name] = d
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"Broken", "User", "UserController", "UserMapper", "UserService"}, names)
	return byName
}

func TestLoad_Entity(t *testing.T) {
	user := loadApp(t)["User"]
	require.NotNil(t, user)
	assert.Equal(t, appPkg, user.PkgPath)
	assert.Equal(t, "app", user.PkgName)
	assert.Equal(t, "app.go", user.File)
	assert.Equal(t, decl.Struct, user.Kind)
	assert.True(t, user.Roles.Has(decl.RoleJSON|decl.RoleEntity))
	assert.Equal(t, "User is an account.", user.Doc)
	assert.Empty(t, user.Problems)

	fields := make(map[string]*decl.Member)
	for _, m := range user.Fields() {
		fields[m.Name] = m
	}
	assert.Len(t, fields, 10)

	id := fields["ID"]
	assert.Equal(t, "id", id.JSONName)
	assert.Equal(t, "user_id", id.Column)
	assert.Equal(t, "ID is the primary key.", id.Doc)
	assert.Equal(t, decl.KindUUID, id.Type.Scalar)

	assert.Equal(t, decl.KindDecimal, fields["Balance"].Type.Scalar)
	assert.Equal(t, decl.Class{Kind: decl.KindString, List: true, IsBasic: true, ArrayLen: -1, Elem: decl.ScalarOf(decl.KindString)}, decl.Classify(fields["Tags"].Type))

	scores := decl.Classify(fields["Scores"].Type)
	assert.True(t, scores.List)
	assert.True(t, scores.Nullable)

	status := fields["Status"].Type
	assert.Equal(t, decl.ShapeScalar, status.Shape)
	assert.True(t, status.Converted())
	assert.Equal(t, appPkg+".Status", status.FullName())

	assert.Equal(t, decl.ShapeOther, fields["Raw"].Type.Shape)
	assert.Equal(t, decl.ShapeOther, fields["Meta"].Type.Shape)
	assert.True(t, fields["Secret"].SkipJSON)
	assert.True(t, fields["Secret"].SkipColumn)
	assert.False(t, fields["note"].Exported)

	require.NotNil(t, user.Base)
	assert.Equal(t, "Audit", user.Base.Name)
	assert.Equal(t, 1, user.Base.Depth)
	require.Len(t, user.Base.Members, 2)
	assert.Equal(t, "createdAt", user.Base.Members[0].JSONName)
	assert.Equal(t, decl.ShapeNullable, user.Base.Members[1].Type.Shape)

	var flat []string
	for _, l := range decl.Flatten(user) {
		flat = append(flat, l.Name)
	}
	assert.Equal(t, []string{"ID", "Name", "Balance", "Tags", "Scores", "Status", "Raw", "Meta", "Secret", "note", "CreatedAt", "UpdatedAt"}, flat)
}

func TestLoad_Mapper(t *testing.T) {
	m := loadApp(t)["UserMapper"]
	require.NotNil(t, m)
	assert.Equal(t, decl.Interface, m.Kind)
	assert.Equal(t, decl.RoleMapper, m.Roles)
	assert.Equal(t, "postgres", m.Arg(decl.ArgDialect))

	methods := m.Methods()
	require.Len(t, methods, 2)

	find := methods[0]
	assert.Equal(t, "Find", find.Name)
	assert.Equal(t, "Find returns a user.", find.Doc)
	sql := find.SQL()
	require.NotNil(t, sql)
	assert.Equal(t, decl.DirSelect, sql.Name)
	assert.Equal(t, "SELECT * FROM users\nWHERE user_id = #{id}", sql.Body)
	require.Len(t, find.Params, 2)
	assert.True(t, find.Params[0].Type.Is("context", "Context"))
	ret := find.Return()
	assert.Equal(t, decl.ShapeResult, ret.Shape)
	assert.True(t, ret.Elem.IsPointerTo(appPkg, "User"))

	list := methods[1]
	assert.Equal(t, "SELECT * FROM users #if{name != nil} WHERE name = #{name} #endif", list.SQL().Body)
	assert.True(t, list.Param("db").Type.Is("github.com/syssam/csr/dialect/sql", "ExecQuerier"))
	assert.True(t, decl.Classify(list.Return()).List)
}

func TestLoad_ServiceAndController(t *testing.T) {
	decls := loadApp(t)

	svc := decls["UserService"]
	assert.Equal(t, decl.RoleService, svc.Roles)
	require.NotNil(t, svc.Ctor)
	assert.Equal(t, "NewUserService", svc.Ctor.Name)
	require.Len(t, svc.Ctor.Params, 1)
	assert.Equal(t, appPkg+".UserMapper", svc.Ctor.Params[0].Type.FullName())
	require.Len(t, svc.Methods(), 1)
	assert.Equal(t, "Get returns a user.", svc.Methods()[0].Doc)

	ctrl := decls["UserController"]
	assert.Equal(t, "/users", ctrl.Arg(decl.ArgRoute))
	require.Len(t, ctrl.Methods(), 2)
	get := ctrl.Methods()[0]
	http := get.Directive(decl.DirHTTP)
	require.NotNil(t, http)
	assert.Equal(t, []string{"GET", "/{id}"}, http.Args)
	assert.Equal(t, "Get answers one user.", get.Doc)

	tenant := get.Param("tenant")
	assert.Equal(t, decl.SourceHeader, tenant.Source)
	assert.Equal(t, "X-Tenant", tenant.BindKey())
	assert.Equal(t, decl.SourceAuto, get.Param("id").Source)

	require.Len(t, ctrl.Problems, 1)
	assert.Contains(t, ctrl.Problems[0], `unknown parameter "missing"`)
}

func TestLoad_UnknownMarker(t *testing.T) {
	broken := loadApp(t)["Broken"]
	assert.Equal(t, decl.Role(0), broken.Roles)
	require.Len(t, broken.Problems, 1)
	assert.Contains(t, broken.Problems[0], `unknown marker "unknown"`)
}

func TestGenerated(t *testing.T) {
	assert.True(t, Generated("/x/user_csr.go"))
	assert.True(t, Generated("csr_register.go"))
	assert.False(t, Generated("user.go"))
	assert.False(t, Generated("csr.go"))
}

func TestParseComments(t *testing.T) {
	src := `package p

// Doc line one.
//
//csr:controller /api
// Doc line two.
//csr:update UPDATE t
// SET a = #{a}
//   -- keep indentation
//csr:param a body
/* block */
type T struct{}
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)
	gd := f.Decls[0].(*ast.GenDecl)
	doc, dirs := parseComments(gd.Doc, func(token.Pos) string { return "p.go:1" })
	assert.Equal(t, "Doc line one.\n\nDoc line two.\nblock", doc)
	require.Len(t, dirs, 3)
	assert.Equal(t, "controller", dirs[0].Name)
	assert.Equal(t, []string{"/api"}, dirs[0].Args)
	assert.Equal(t, "update", dirs[1].Name)
	assert.Equal(t, "UPDATE t\nSET a = #{a}\n  -- keep indentation", dirs[1].Body)
	assert.Equal(t, []string{"a", "body"}, dirs[2].Args)
}

func TestTypeOf(t *testing.T) {
	pkg := types.NewPackage("example.com/m", "m")
	named := func(name string, u types.Type) *types.Named {
		return types.NewNamed(types.NewTypeName(token.NoPos, pkg, name, nil), u, nil)
	}
	tests := []struct {
		name string
		typ  types.Type
		want string
	}{
		{"basic", types.Typ[types.Int64], "int64"},
		{"pointer", types.NewPointer(types.Typ[types.Bool]), "*bool"},
		{"slice", types.NewSlice(types.Typ[types.String]), "[]string"},
		{"array", types.NewArray(types.Typ[types.Float64], 3), "[3]float64"},
		{"bytes", types.NewSlice(types.Typ[types.Byte]), "[]byte"},
		{"error", types.Universe.Lookup("error").Type(), "error"},
		{"named scalar", named("Level", types.Typ[types.Int32]), "example.com/m.Level"},
		{"object", named("Point", types.NewStruct(nil, nil)), "example.com/m.Point"},
		{"map", types.NewMap(types.Typ[types.String], types.Typ[types.Int]), "map[string]int"},
		{"uint", types.Typ[types.Uint], "uint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.typ).FullName())
		})
	}
	assert.Equal(t, decl.ShapeScalar, TypeOf(named("Level", types.Typ[types.Int32])).Shape)
	assert.Equal(t, decl.ShapeObject, TypeOf(named("Point", types.NewStruct(nil, nil))).Shape)
	assert.Equal(t, decl.ShapeOther, TypeOf(types.Typ[types.Uint]).Shape)
	assert.True(t, TypeOf(types.Universe.Lookup("error").Type()).IsError())
}

func TestPackages(t *testing.T) {
	pkgs, err := (&Config{Dir: "testdata/app"}).Packages()
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	p := pkgs[0]
	assert.Equal(t, appPkg, p.Path)
	assert.Equal(t, "app", p.Name)
	assert.Equal(t, "app", filepath.Base(p.Dir))
	assert.Len(t, p.Decls, 5)
}
