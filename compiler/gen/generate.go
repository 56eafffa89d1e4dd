package gen

import (
	"context"
	"errors"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/csr/compiler/decl"
	"github.com/syssam/csr/compiler/load"
)

// Report summarizes a generation pass. File lists hold absolute paths in
// package order.
type Report struct {
	Written   []string
	Unchanged []string
	Removed   []string
	// Skipped lists the declarations that could not be generated.
	Skipped []*DeclarationError
}

// Generator emits the companion files of annotated declarations.
type Generator struct {
	cfg *Config
}

// New returns a Generator configured by opts.
func New(opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *Config { return g.cfg }

// Generate runs one generation pass over pkgs with a Generator built from opts.
func Generate(ctx context.Context, pkgs []*load.Package, opts ...Option) (*Report, error) {
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, pkgs)
}

// job is the emission of one declaration.
type job struct {
	pkg  *load.Package
	d    *decl.Declaration
	name string // output file name
	src  []byte
	skip *DeclarationError
}

// Generate emits every annotated declaration of pkgs, writes the files that
// changed and removes the generated files no declaration produces anymore.
// Declarations that cannot be generated are skipped and listed in the
// report; the error is reserved for failures of the pass itself.
func (g *Generator) Generate(ctx context.Context, pkgs []*load.Package) (*Report, error) {
	var jobs []*job
	for _, pkg := range pkgs {
		for _, d := range pkg.Decls {
			if d.Roles == 0 {
				continue
			}
			jobs = append(jobs, &job{pkg: pkg, d: d, name: FileName(d)})
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for _, j := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			f, err := g.Emit(j.d)
			if err != nil {
				var derr *DeclarationError
				if !errors.As(err, &derr) {
					return err
				}
				j.skip = derr
				return nil
			}
			j.src, err = format(j.pkg.Dir, j.name, f)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	byPkg := make(map[*load.Package][]*job)
	for _, j := range jobs {
		byPkg[j.pkg] = append(byPkg[j.pkg], j)
	}
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := newPackageOutput(g.cfg, pkg.Dir)
		var registered []*decl.Declaration
		for _, j := range byPkg[pkg] {
			if j.skip != nil {
				g.cfg.logf("skipping %s: %v", j.d.Name, j.skip)
				report.Skipped = append(report.Skipped, j.skip)
				out.keep(j.name)
				continue
			}
			out.add(j.name, j.src)
			if j.d.Roles.Any(decl.RoleService | decl.RoleController | decl.RoleMapper) {
				registered = append(registered, j.d)
			}
		}
		if g.cfg.FeatureEnabled(FeatureRegister.Name) && len(registered) > 0 {
			src, err := format(pkg.Dir, registerFile, g.registerAll(pkg, registered))
			if err != nil {
				return nil, err
			}
			out.add(registerFile, src)
		}
		if err := out.flush(report); err != nil {
			return nil, err
		}
		if err := g.cleanup(pkg.Dir); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// cleanup removes the output of the disabled features from dir.
func (g *Generator) cleanup(dir string) error {
	for _, f := range AllFeatures {
		if f.cleanup == nil || g.cfg.FeatureEnabled(f.Name) {
			continue
		}
		if err := f.cleanup(dir); err != nil {
			return NewGenerationError("clean", dir, "cannot remove the output of feature "+f.Name, err)
		}
	}
	return nil
}

// FileName returns the name of the file generated for d.
func FileName(d *decl.Declaration) string {
	return decl.SnakeCase(d.Name) + load.GeneratedSuffix
}

// Emit builds the generated file of one declaration. It returns a
// *DeclarationError when the declaration is malformed.
func (g *Generator) Emit(d *decl.Declaration) (*jen.File, error) {
	if len(d.Problems) > 0 {
		err := NewDeclarationError(d.FullName(), "", strings.Join(d.Problems, "; "), nil)
		err.Pos = d.Pos
		return nil, err
	}
	e := newEmitter(g.cfg, d)
	if err := e.checkRoles(); err != nil {
		return nil, err
	}
	steps := []struct {
		role decl.Role
		emit func() error
	}{
		{decl.RoleMapper, e.mapper},
		{decl.RoleService, e.service},
		{decl.RoleController, e.controller},
		{decl.RoleFromJSON, noError(e.decoder)},
		{decl.RoleToJSON, noError(e.encoder)},
		{decl.RoleEntity, noError(e.scanner)},
		{decl.RoleService | decl.RoleController | decl.RoleMapper, e.registration},
	}
	for _, s := range steps {
		if !d.Roles.Any(s.role) {
			continue
		}
		if err := s.emit(); err != nil {
			return nil, err
		}
	}
	return e.f, nil
}

func noError(f func()) func() error {
	return func() error {
		f()
		return nil
	}
}

// checkRoles rejects role combinations no file can satisfy.
func (e *emitter) checkRoles() error {
	d := e.d
	if d.Roles.Has(decl.RoleMapper) && d.Roles != decl.RoleMapper {
		return e.errorf(nil, "a mapper cannot have other roles (%s)", d.Roles)
	}
	if d.Roles.Any(decl.RoleJSON|decl.RoleEntity|decl.RoleService|decl.RoleController) && d.Kind != decl.Struct {
		return e.errorf(nil, "%s requires a struct", d.Roles)
	}
	return nil
}

// registerAll emits RegisterAll, which calls the Register function of
// every registered declaration of pkg.
func (g *Generator) registerAll(pkg *load.Package, decls []*decl.Declaration) *jen.File {
	f := jen.NewFilePathName(pkg.Path, pkg.Name)
	f.HeaderComment(g.cfg.Header)
	calls := make([]jen.Code, len(decls))
	for i, d := range decls {
		calls[i] = jen.Id(registerName(d)).Call(jen.Id("r"))
	}
	f.Comment("RegisterAll registers the services, controllers and mappers of the package in r.")
	f.Func().Id("RegisterAll").Params(jen.Id("r").Op("*").Qual(csrPkg, "Registry")).Block(calls...)
	return f
}
