// Package load reads annotated declarations out of Go packages.
//
// Packages are loaded with golang.org/x/tools/go/packages and type-checked;
// every named struct or interface carrying a //csr: marker in its doc
// comment becomes a decl.Declaration. Previously generated files are
// replaced by empty overlays before type-checking, so stale output never
// blocks a new run.
package load

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/csr/compiler/decl"
)

// GeneratedSuffix and RegisterFile name the files the generator writes.
const (
	GeneratedSuffix = "_csr.go"
	RegisterFile    = "csr_register.go"
)

// Config configures a load.
type Config struct {
	// Dir is the directory patterns are resolved in; "" for the current one.
	Dir string
	// BuildFlags are passed to the build system, e.g. "-tags=integration".
	BuildFlags []string
	// Env overrides the environment of the build system.
	Env []string
}

const mode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// Package is a loaded package and its annotated declarations.
type Package struct {
	Path  string
	Name  string
	Dir   string
	Decls []*decl.Declaration
}

// Load loads the packages matching the patterns and returns their annotated
// declarations, sorted by package path and name.
func (c *Config) Load(patterns ...string) ([]*decl.Declaration, error) {
	pkgs, err := c.Packages(patterns...)
	if err != nil {
		return nil, err
	}
	var decls []*decl.Declaration
	for _, p := range pkgs {
		decls = append(decls, p.Decls...)
	}
	return decls, nil
}

// Packages loads the packages matching the patterns, sorted by import
// path. Listing and parse errors fail the load; type errors do not, since
// code referring to generated symbols does not type-check until generation
// has run.
func (c *Config) Packages(patterns ...string) ([]*Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	overlay, err := c.overlay(patterns)
	if err != nil {
		return nil, err
	}
	pkgs, err := packages.Load(&packages.Config{
		Mode:       mode,
		Dir:        c.Dir,
		Env:        c.env(),
		BuildFlags: c.BuildFlags,
		Overlay:    overlay,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := loadErrors(pkgs); err != nil {
		return nil, err
	}
	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}
		decls := newLoader(pkg).declarations()
		decl.Sort(decls)
		out = append(out, &Package{
			Path:  pkg.PkgPath,
			Name:  pkg.Name,
			Dir:   filepath.Dir(pkg.GoFiles[0]),
			Decls: decls,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Load loads patterns with the default configuration.
func Load(patterns ...string) ([]*decl.Declaration, error) {
	return (&Config{}).Load(patterns...)
}

func (c *Config) env() []string {
	if c.Env == nil {
		return nil
	}
	return append(os.Environ(), c.Env...)
}

// overlay lists the generated files of the matched packages and maps each
// one onto an empty file of the same package.
func (c *Config) overlay(patterns []string) (map[string][]byte, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        c.Dir,
		Env:        c.env(),
		BuildFlags: c.BuildFlags,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	overlay := make(map[string][]byte)
	for _, pkg := range pkgs {
		for _, name := range pkg.GoFiles {
			if Generated(name) {
				overlay[name] = []byte("package " + pkg.Name + "\n")
			}
		}
	}
	return overlay, nil
}

// Generated reports whether the file name is one the generator writes.
func Generated(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, GeneratedSuffix) || base == RegisterFile
}

func loadErrors(pkgs []*packages.Package) error {
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			if err.Kind == packages.TypeError {
				continue
			}
			errs = append(errs, fmt.Errorf("load: %s: %s", pkg.PkgPath, err.Msg))
		}
	})
	return errors.Join(errs...)
}

// loader extracts the declarations of one package.
type loader struct {
	pkg *packages.Package
	// methods holds the methods declared in the package, by receiver type name.
	methods map[string][]*ast.FuncDecl
	funcs   map[string]*ast.FuncDecl
}

func newLoader(pkg *packages.Package) *loader {
	return &loader{
		pkg:     pkg,
		methods: make(map[string][]*ast.FuncDecl),
		funcs:   make(map[string]*ast.FuncDecl),
	}
}

// files returns the package syntax ordered by file name.
func (l *loader) files() []*ast.File {
	files := make([]*ast.File, len(l.pkg.Syntax))
	copy(files, l.pkg.Syntax)
	sort.Slice(files, func(i, j int) bool {
		return l.filename(files[i].Pos()) < l.filename(files[j].Pos())
	})
	return files
}

func (l *loader) filename(pos token.Pos) string {
	return l.pkg.Fset.Position(pos).Filename
}

func (l *loader) pos(pos token.Pos) string {
	p := l.pkg.Fset.Position(pos)
	if !p.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(p.Filename), p.Line)
}

func (l *loader) declarations() []*decl.Declaration {
	files := l.files()
	for _, f := range files {
		for _, d := range f.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok {
				continue
			}
			if fd.Recv == nil {
				l.funcs[fd.Name.Name] = fd
			} else if name := receiverName(fd.Recv); name != "" {
				l.methods[name] = append(l.methods[name], fd)
			}
		}
	}
	var decls []*decl.Declaration
	for _, f := range files {
		if Generated(l.filename(f.Pos())) {
			continue
		}
		for _, d := range f.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if d := l.declaration(ts, doc); d != nil {
					decls = append(decls, d)
				}
			}
		}
	}
	return decls
}

// declaration returns the declaration of ts, or nil if it carries no marker.
func (l *loader) declaration(ts *ast.TypeSpec, doc *ast.CommentGroup) *decl.Declaration {
	text, dirs := parseComments(doc, l.pos)
	if len(dirs) == 0 {
		return nil
	}
	p := l.pkg.Fset.Position(ts.Pos())
	d := &decl.Declaration{
		Name:     ts.Name.Name,
		PkgPath:  l.pkg.PkgPath,
		PkgName:  l.pkg.Name,
		Dir:      filepath.Dir(p.Filename),
		File:     filepath.Base(p.Filename),
		Pos:      l.pos(ts.Pos()),
		Exported: ast.IsExported(ts.Name.Name),
		Doc:      text,
		Args:     make(map[string]string),
	}
	for _, dir := range dirs {
		role, ok := decl.RoleOf(dir.Name)
		if !ok {
			d.Problems = append(d.Problems, fmt.Sprintf("%s: unknown marker %q", dir.Pos, dir.Name))
			continue
		}
		d.Roles |= role
		switch role {
		case decl.RoleController:
			if route := dir.Arg(0); route != "" {
				d.Args[decl.ArgRoute] = route
			}
		case decl.RoleMapper:
			if name := dir.Arg(0); name != "" {
				d.Args[decl.ArgDialect] = name
			}
		}
	}
	if d.Roles == 0 {
		return d
	}
	if ts.TypeParams != nil && ts.TypeParams.NumFields() > 0 {
		d.Problems = append(d.Problems, fmt.Sprintf("%s: generic type %s is not supported", d.Pos, d.Name))
		return d
	}
	obj, ok := l.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok {
		d.Problems = append(d.Problems, fmt.Sprintf("%s: %s has no type information", d.Pos, d.Name))
		return d
	}
	switch u := obj.Type().Underlying().(type) {
	case *types.Struct:
		d.Kind = decl.Struct
		st, _ := ts.Type.(*ast.StructType)
		d.Members = l.fields(u, fieldDocs(st))
		d.Members = append(d.Members, l.structMethods(d)...)
		d.Base = l.bases(u)
	case *types.Interface:
		d.Kind = decl.Interface
		it, _ := ts.Type.(*ast.InterfaceType)
		d.Members = l.interfaceMethods(d, it)
	default:
		d.Problems = append(d.Problems, fmt.Sprintf("%s: %s is neither a struct nor an interface", d.Pos, d.Name))
		return d
	}
	if fd, ok := l.funcs["New"+d.Name]; ok {
		d.Ctor = l.ctor(fd)
	}
	return d
}

// fields returns the field members of st, skipping embedded fields.
func (l *loader) fields(st *types.Struct, docs map[string]string) []*decl.Member {
	var ms []*decl.Member
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			continue
		}
		m := &decl.Member{
			Name:     f.Name(),
			Kind:     decl.FieldMember,
			Exported: f.Exported(),
			Type:     TypeOf(f.Type()),
			Doc:      docs[f.Name()],
			Pos:      l.pos(f.Pos()),
		}
		applyTags(m, st.Tag(i))
		ms = append(ms, m)
	}
	return ms
}

// bases returns the chain of structs embedded by value in st, breadth
// first: every struct embedded by st at depth 1, the structs they embed at
// depth 2, and so on. Each named struct appears once.
func (l *loader) bases(st *types.Struct) *decl.Base {
	var (
		head, tail *decl.Base
		seen       = make(map[*types.TypeName]bool)
		level      = []*types.Struct{st}
	)
	for depth := 1; len(level) > 0; depth++ {
		var next []*types.Struct
		for _, s := range level {
			for i := 0; i < s.NumFields(); i++ {
				f := s.Field(i)
				if !f.Embedded() {
					continue
				}
				named, ok := types.Unalias(f.Type()).(*types.Named)
				if !ok || seen[named.Obj()] {
					continue
				}
				est, ok := named.Underlying().(*types.Struct)
				if !ok {
					continue
				}
				seen[named.Obj()] = true
				b := &decl.Base{
					Name:    named.Obj().Name(),
					Depth:   depth,
					Members: l.fields(est, nil),
				}
				if pkg := named.Obj().Pkg(); pkg != nil {
					b.PkgPath = pkg.Path()
				}
				if head == nil {
					head = b
				} else {
					tail.Base = b
				}
				tail = b
				next = append(next, est)
			}
		}
		level = next
	}
	return head
}

func (l *loader) structMethods(d *decl.Declaration) []*decl.Member {
	var ms []*decl.Member
	for _, fd := range l.methods[d.Name] {
		fn, ok := l.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
		if !ok {
			continue
		}
		ms = append(ms, l.method(d, fd.Name.Name, fn, fd.Doc, fd.Pos()))
	}
	return ms
}

func (l *loader) interfaceMethods(d *decl.Declaration, it *ast.InterfaceType) []*decl.Member {
	if it == nil || it.Methods == nil {
		return nil
	}
	var ms []*decl.Member
	for _, f := range it.Methods.List {
		for _, name := range f.Names {
			fn, ok := l.pkg.TypesInfo.Defs[name].(*types.Func)
			if !ok {
				continue
			}
			ms = append(ms, l.method(d, name.Name, fn, f.Doc, name.Pos()))
		}
	}
	return ms
}

func (l *loader) method(d *decl.Declaration, name string, fn *types.Func, doc *ast.CommentGroup, pos token.Pos) *decl.Member {
	sig := fn.Type().(*types.Signature)
	m := &decl.Member{
		Name:     name,
		Kind:     decl.MethodMember,
		Exported: ast.IsExported(name),
		Params:   params(sig.Params()),
		Results:  results(sig.Results()),
		Pos:      l.pos(pos),
	}
	m.Doc, m.Directives = parseComments(doc, l.pos)
	for _, dir := range m.Directives {
		if dir.Name != decl.DirParam {
			continue
		}
		if err := bindParam(m, dir); err != nil {
			d.Problems = append(d.Problems, fmt.Sprintf("%s: %s: %v", dir.Pos, name, err))
		}
	}
	return m
}

func (l *loader) ctor(fd *ast.FuncDecl) *decl.Func {
	fn, ok := l.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.TypeParams().Len() > 0 {
		return nil
	}
	return &decl.Func{
		Name:    fd.Name.Name,
		Params:  params(sig.Params()),
		Results: results(sig.Results()),
	}
}

// bindParam applies a `//csr:param <name> <source>[=<key>]` marker.
func bindParam(m *decl.Member, dir *decl.Directive) error {
	p := m.Param(dir.Arg(0))
	if p == nil {
		return fmt.Errorf("param marker names unknown parameter %q", dir.Arg(0))
	}
	src, key, _ := strings.Cut(dir.Arg(1), "=")
	s, ok := decl.ParseSource(src)
	if !ok {
		return fmt.Errorf("parameter %s: unknown source %q", p.Name, src)
	}
	p.Source, p.Key = s, key
	return nil
}

func params(t *types.Tuple) []*decl.Param {
	ps := make([]*decl.Param, t.Len())
	for i := range ps {
		v := t.At(i)
		name := v.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		ps[i] = &decl.Param{Name: name, Type: TypeOf(v.Type())}
	}
	return ps
}

func results(t *types.Tuple) []*decl.Type {
	rs := make([]*decl.Type, t.Len())
	for i := range rs {
		rs[i] = TypeOf(t.At(i).Type())
	}
	return rs
}

func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.IndexExpr:
		if id, ok := x.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}

func fieldDocs(st *ast.StructType) map[string]string {
	docs := make(map[string]string)
	if st == nil || st.Fields == nil {
		return docs
	}
	for _, f := range st.Fields.List {
		if f.Doc == nil {
			continue
		}
		for _, name := range f.Names {
			docs[name.Name] = strings.TrimSpace(f.Doc.Text())
		}
	}
	return docs
}
