package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/csr/compiler/decl"
)

const testPkg = "example.com/app"

// newTestEmitter returns an emitter of d with a silent logger.
func newTestEmitter(t *testing.T, d *decl.Declaration, opts ...Option) *emitter {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithLogger(nil)}, opts...)...)
	require.NoError(t, err)
	return newEmitter(cfg, d)
}

func createDecl(name string, kind decl.Kind, roles decl.Role, members ...*decl.Member) *decl.Declaration {
	return &decl.Declaration{
		Name:     name,
		PkgPath:  testPkg,
		PkgName:  "app",
		Kind:     kind,
		Exported: true,
		Roles:    roles,
		Args:     make(map[string]string),
		Members:  members,
		Pos:      "app.go:1",
	}
}

func createField(name string, typ *decl.Type) *decl.Member {
	return &decl.Member{Name: name, Kind: decl.FieldMember, Exported: true, Type: typ}
}

func createMethod(name string, params []*decl.Param, results ...*decl.Type) *decl.Member {
	return &decl.Member{Name: name, Kind: decl.MethodMember, Exported: true, Params: params, Results: results}
}

func createParam(name string, typ *decl.Type) *decl.Param {
	return &decl.Param{Name: name, Type: typ}
}

func withDirective(m *decl.Member, name, body string, args ...string) *decl.Member {
	m.Directives = append(m.Directives, &decl.Directive{Name: name, Args: args, Body: body})
	return m
}

var (
	stringType  = decl.ScalarOf(decl.KindString)
	intType     = decl.ScalarOf(decl.KindInt)
	int64Type   = decl.ScalarOf(decl.KindInt64)
	uuidType    = decl.ScalarOf(decl.KindUUID)
	timeType    = decl.ScalarOf(decl.KindTime)
	contextType = decl.ObjectOf("context", "Context")
	statusType  = decl.NamedScalar(testPkg, "Status", decl.KindString)
	userType    = decl.ObjectOf(testPkg, "User")
)

// createUser returns the User struct used across emitter tests:
//
//	type User struct {
//		ID        uuid.UUID `json:"id" db:"user_id"`
//		Name      string
//		Age       *int
//		Tags      []string
//		Status    Status
//		Address   *Address
//		CreatedAt time.Time
//		Secret    string `json:"-" db:"-"`
//	}
func createUser(roles decl.Role) *decl.Declaration {
	id := createField("ID", uuidType)
	id.JSONName, id.Column = "id", "user_id"
	secret := createField("Secret", stringType)
	secret.SkipJSON, secret.SkipColumn = true, true
	return createDecl("User", decl.Struct, roles,
		id,
		createField("Name", stringType),
		createField("Age", decl.PointerTo(intType)),
		createField("Tags", decl.SliceOf(stringType)),
		createField("Status", statusType),
		createField("Address", decl.PointerTo(decl.ObjectOf(testPkg, "Address"))),
		createField("CreatedAt", timeType),
		secret,
	)
}
