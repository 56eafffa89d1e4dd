package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/csr/compiler/decl"
	"github.com/syssam/csr/compiler/load"
)

func createPackage(t *testing.T, decls ...*decl.Declaration) *load.Package {
	t.Helper()
	return &load.Package{Path: testPkg, Name: "app", Dir: t.TempDir(), Decls: decls}
}

func generate(t *testing.T, pkg *load.Package, opts ...Option) *Report {
	t.Helper()
	report, err := Generate(context.Background(), []*load.Package{pkg}, append([]Option{WithLogger(nil), WithWorkers(2)}, opts...)...)
	require.NoError(t, err)
	return report
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// =============================================================================
// Generate Tests
// =============================================================================

func TestGenerate(t *testing.T) {
	pkg := createPackage(t, createUser(decl.RoleJSON|decl.RoleEntity), createMapper(findMethod()), createService())
	report := generate(t, pkg)

	assert.Equal(t, []string{"csr_register.go", "user_csr.go", "user_mapper_csr.go", "user_service_csr.go"}, names(report.Written))
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Removed)

	src, err := os.ReadFile(filepath.Join(pkg.Dir, "user_csr.go"))
	require.NoError(t, err)
	code := string(src)
	assert.True(t, strings.HasPrefix(code, "// "+DefaultHeader+"\n"))
	assert.Contains(t, code, "package app")
	assert.Contains(t, code, "func DecodeUser(doc jsonx.Node) User {")
	assert.Contains(t, code, "func ScanUsers(rows sql.ColumnScanner) ([]User, error) {")

	src, err = os.ReadFile(filepath.Join(pkg.Dir, "csr_register.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "func RegisterAll(r *csr.Registry) {")
	assert.Contains(t, string(src), "RegisterUserMapper(r)\n\tRegisterUserService(r)")
	assert.NotContains(t, string(src), "RegisterUser(r)")
}

func TestGenerate_Idempotent(t *testing.T) {
	pkg := createPackage(t, createUser(decl.RoleJSON), createService())
	first := generate(t, pkg)
	require.Len(t, first.Written, 3)
	before, err := os.ReadFile(filepath.Join(pkg.Dir, "user_csr.go"))
	require.NoError(t, err)

	second := generate(t, pkg)
	assert.Empty(t, second.Written)
	assert.Equal(t, names(first.Written), names(second.Unchanged))
	after, err := os.ReadFile(filepath.Join(pkg.Dir, "user_csr.go"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerate_Stale(t *testing.T) {
	pkg := createPackage(t, createUser(decl.RoleJSON))
	writeFile(t, pkg.Dir, "old_csr.go", "// "+DefaultHeader+"\n\npackage app\n")
	writeFile(t, pkg.Dir, "hand_csr.go", "package app\n")
	writeFile(t, pkg.Dir, "csr_register.go", "// "+DefaultHeader+"\n\npackage app\n")

	report := generate(t, pkg)
	assert.ElementsMatch(t, []string{"old_csr.go", "csr_register.go"}, names(report.Removed))
	assert.NoFileExists(t, filepath.Join(pkg.Dir, "old_csr.go"))
	assert.FileExists(t, filepath.Join(pkg.Dir, "hand_csr.go"))
}

func TestGenerate_Skipped(t *testing.T) {
	broken := createUser(decl.RoleJSON)
	broken.Name = "Broken"
	broken.Problems = []string{`app.go:3: unknown marker "unknown"`}
	bad := createMapper(withDirective(createMethod("Find", nil, decl.ErrorType), decl.DirSelect, "SELECT 1"))
	pkg := createPackage(t, broken, bad, createUser(decl.RoleJSON))
	writeFile(t, pkg.Dir, "broken_csr.go", "// "+DefaultHeader+"\n\npackage app\n")

	var logs []string
	report, err := Generate(context.Background(), []*load.Package{pkg}, WithLogger(logFunc(func(format string, args ...any) {
		logs = append(logs, format)
	})))
	require.NoError(t, err)

	require.Len(t, report.Skipped, 2)
	assert.Contains(t, report.Skipped[0].Error(), `unknown marker "unknown"`)
	assert.Equal(t, "Find", report.Skipped[1].Member)
	assert.Equal(t, []string{"user_csr.go"}, names(report.Written))
	assert.FileExists(t, filepath.Join(pkg.Dir, "broken_csr.go"))
	assert.NoFileExists(t, filepath.Join(pkg.Dir, "csr_register.go"))
	assert.Len(t, logs, 2)
}

func TestGenerate_WithoutRegister(t *testing.T) {
	pkg := createPackage(t, createService())
	writeFile(t, pkg.Dir, "csr_register.go", "package app\n")

	report := generate(t, pkg, WithoutFeatures(FeatureRegister.Name))
	assert.Equal(t, []string{"user_service_csr.go"}, names(report.Written))
	assert.NoFileExists(t, filepath.Join(pkg.Dir, "csr_register.go"))
}

func TestGenerate_Cache(t *testing.T) {
	pkg := createPackage(t, createUser(decl.RoleJSON))
	generate(t, pkg, WithFeatureNames(FeatureCache.Name))

	data, err := os.ReadFile(filepath.Join(pkg.Dir, cacheFile))
	require.NoError(t, err)
	var m manifest
	require.NoError(t, msgpack.Unmarshal(data, &m))
	assert.Equal(t, DefaultHeader, m.Header)
	require.Contains(t, m.Files, "user_csr.go")
	src, err := os.ReadFile(filepath.Join(pkg.Dir, "user_csr.go"))
	require.NoError(t, err)
	assert.Equal(t, digest(src), m.Files["user_csr.go"])

	report := generate(t, pkg, WithFeatureNames(FeatureCache.Name))
	assert.Equal(t, []string{"user_csr.go"}, names(report.Unchanged))

	// A deleted output is written again despite its manifest entry.
	require.NoError(t, os.Remove(filepath.Join(pkg.Dir, "user_csr.go")))
	report = generate(t, pkg, WithFeatureNames(FeatureCache.Name))
	assert.Equal(t, []string{"user_csr.go"}, names(report.Written))

	// Turning the cache off removes the manifest.
	generate(t, pkg)
	assert.NoFileExists(t, filepath.Join(pkg.Dir, cacheFile))
}

func TestGenerate_MultiplePackages(t *testing.T) {
	for _, workers := range []int{1, 4} {
		first := createPackage(t, createUser(decl.RoleJSON|decl.RoleEntity), createMapper(findMethod()))
		second := createPackage(t, createService())

		report, err := Generate(context.Background(), []*load.Package{first, second}, WithLogger(nil), WithWorkers(workers))
		require.NoError(t, err, "workers=%d", workers)
		assert.Len(t, report.Written, 5)
		assert.FileExists(t, filepath.Join(first.Dir, "csr_register.go"))
		assert.FileExists(t, filepath.Join(second.Dir, "user_service_csr.go"))
	}
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pkg := createPackage(t, createUser(decl.RoleJSON))
	_, err := Generate(ctx, []*load.Package{pkg}, WithLogger(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	_, err := Generate(context.Background(), nil, WithWorkers(0))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

type logFunc func(format string, args ...any)

func (f logFunc) Printf(format string, args ...any) { f(format, args...) }

// =============================================================================
// Emit Tests
// =============================================================================

func TestEmit_Roles(t *testing.T) {
	g, err := New(WithLogger(nil))
	require.NoError(t, err)

	t.Run("MapperWithOtherRole", func(t *testing.T) {
		d := createMapper(findMethod())
		d.Roles |= decl.RoleJSON
		_, err := g.Emit(d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a mapper cannot have other roles")
	})
	t.Run("CodecOnInterface", func(t *testing.T) {
		d := createDecl("Shape", decl.Interface, decl.RoleToJSON)
		_, err := g.Emit(d)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a struct")
	})
	t.Run("Combined", func(t *testing.T) {
		d := createService()
		d.Roles |= decl.RoleJSON | decl.RoleEntity
		f, err := g.Emit(d)
		require.NoError(t, err)
		code := f.GoString()
		assert.Contains(t, code, "type UserServiceAPI interface {")
		assert.Contains(t, code, "func DecodeUserService(doc jsonx.Node) UserService {")
		assert.Contains(t, code, "func (v *UserService) EncodeJSON(w *jsonx.Writer) {")
		assert.Contains(t, code, "func ScanUserService(rows sql.ColumnScanner) (*UserService, error) {")
		assert.Contains(t, code, "func RegisterUserService(r *csr.Registry) {")
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "user_csr.go", FileName(&decl.Declaration{Name: "User"}))
	assert.Equal(t, "user_account_csr.go", FileName(&decl.Declaration{Name: "UserAccount"}))
}
