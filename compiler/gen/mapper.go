package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/csr/compiler/decl"
	"github.com/syssam/csr/compiler/sqltmpl"
	"github.com/syssam/csr/dialect"
)

// dialectConsts maps dialect names onto the constants of the dialect package.
var dialectConsts = map[string]string{
	dialect.Postgres:  "Postgres",
	dialect.MySQL:     "MySQL",
	dialect.SQLite:    "SQLite",
	dialect.SQLServer: "SQLServer",
}

// mapperDialect returns the dialect of the mapper: its marker argument or
// the configured default.
func (e *emitter) mapperDialect() (string, error) {
	name := e.d.Arg(decl.ArgDialect)
	if name == "" {
		name = e.cfg.Dialect
	}
	n := dialect.Normalize(name)
	if !dialect.Valid(n) {
		return "", e.errorf(nil, "unknown dialect %q", name)
	}
	return n, nil
}

func (e *emitter) implName() string {
	return lowerName(e.d.Name) + "Impl"
}

// mapper emits the implementation of a mapper interface. Every method runs
// the SQL statement of its marker and maps the result to its return type.
func (e *emitter) mapper() error {
	d := e.d
	if d.Kind != decl.Interface {
		return e.errorf(nil, "a mapper must be an interface")
	}
	if d.Ctor != nil {
		return e.errorf(nil, "New%s is generated for mappers and cannot be declared", d.Name)
	}
	name, err := e.mapperDialect()
	if err != nil {
		return err
	}
	impl := e.implName()
	var methods []jen.Code
	for _, m := range d.Methods() {
		code, err := e.mapperMethod(impl, name, m)
		if err != nil {
			return err
		}
		methods = append(methods, code)
	}

	e.f.Commentf("%s implements %s over the connection provider of a registry.", impl, d.Name)
	e.f.Type().Id(impl).Struct(
		jen.Id("reg").Op("*").Qual(csrPkg, "Registry"),
	)
	e.f.Var().Id("_").Id(d.Name).Op("=").Parens(jen.Op("*").Id(impl)).Parens(jen.Nil())
	e.f.Commentf("New%s returns the generated implementation of %s. Methods without a", d.Name, d.Name)
	e.f.Comment("sql.ExecQuerier parameter acquire a connection from reg.")
	e.f.Func().Id("New"+d.Name).Params(jen.Id("reg").Op("*").Qual(csrPkg, "Registry")).Id(d.Name).Block(
		jen.Return(jen.Op("&").Id(impl).Values(jen.Dict{jen.Id("reg"): jen.Id("reg")})),
	)
	e.f.Line()
	for _, m := range methods {
		e.f.Add(m)
		e.f.Line()
	}
	return nil
}

// resultKind is the way a mapper method maps the statement result.
type resultKind uint8

const (
	resultNone     resultKind = iota // error
	resultAffected                   // (int64, error)
	resultOne                        // (*T, error)
	resultAll                        // ([]T, error)
)

// mapperResult classifies the result of a mapper method and returns the
// scan function of row results.
func (e *emitter) mapperResult(m *decl.Member, verb string) (resultKind, jen.Code, error) {
	ret := m.Return()
	switch {
	case ret == nil:
		return 0, nil, e.errorf(m, "a mapper method must return an error")
	case ret.IsError():
		if verb == decl.DirSelect {
			return 0, nil, e.errorf(m, "a select method must return (*T, error) or ([]T, error)")
		}
		return resultNone, nil, nil
	case ret.Shape != decl.ShapeResult:
		return 0, nil, e.errorf(m, "unsupported result %s", ret)
	}
	p := ret.Elem
	switch {
	case p.Shape == decl.ShapeNullable && p.Elem.Shape == decl.ShapeObject:
		return resultOne, jen.Qual(p.Elem.PkgPath, "Scan"+exportName(p.Elem.Name)), nil
	case p.Shape == decl.ShapeList && p.Len < 0 && p.Elem.Shape == decl.ShapeObject:
		return resultAll, jen.Qual(p.Elem.PkgPath, "Scan"+exportName(pluralName(p.Elem.Name))), nil
	case p.Shape == decl.ShapeScalar && p.Scalar == decl.KindInt64 && !p.Converted() && verb != decl.DirSelect:
		return resultAffected, nil, nil
	}
	return 0, nil, e.errorf(m, "unsupported result %s", ret)
}

// mapperParams finds the context and the ExecQuerier parameters of m.
func mapperParams(m *decl.Member) (ctx, db string) {
	for _, p := range m.Params {
		switch t := p.Type; {
		case ctx == "" && t.Is("context", "Context"):
			ctx = p.Name
		case db == "" && (t.Is(sqlPkg, "ExecQuerier") ||
			t.IsPointerTo(stdSQLPkg, "DB") || t.IsPointerTo(stdSQLPkg, "Tx") || t.IsPointerTo(stdSQLPkg, "Conn")):
			db = p.Name
		}
	}
	return ctx, db
}

func (e *emitter) mapperMethod(impl, dialectName string, m *decl.Member) (jen.Code, error) {
	stmt := m.SQL()
	if stmt == nil {
		return nil, e.errorf(m, "no SQL marker")
	}
	tmpl, err := sqltmpl.Compile(dialectName, stmt.Body)
	if err != nil {
		derr := e.errorf(m, "bad SQL template")
		derr.Cause = err
		return nil, derr
	}
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	if err := tmpl.Check(names...); err != nil {
		derr := e.errorf(m, "bad SQL template")
		derr.Cause = err
		return nil, derr
	}
	kind, scan, err := e.mapperResult(m, stmt.Name)
	if err != nil {
		return nil, err
	}

	var (
		s               = newScope(m.Params)
		recv            = s.name("m")
		cmd             = s.name("cmd")
		query           = s.name("query")
		args            = s.name("args")
		errV            = s.name("err")
		ctxName, dbName = mapperParams(m)
		ctx             jen.Code
		body            []jen.Code
	)
	if ctxName != "" {
		ctx = jen.Id(ctxName)
	} else {
		ctx = jen.Qual("context", "Background").Call()
	}
	fail := func() jen.Code {
		switch kind {
		case resultNone:
			return jen.Return(jen.Id(errV))
		case resultAffected:
			return jen.Return(jen.Lit(0), jen.Id(errV))
		}
		return jen.Return(jen.Nil(), jen.Id(errV))
	}

	body = append(body, jen.Id(cmd).Op(":=").Qual(sqlPkg, "NewCommand").Call(jen.Qual(dialectPkg, dialectConsts[dialectName])))
	for _, b := range tmpl.Blocks {
		stmts := []jen.Code{jen.Id(cmd).Dot("Append").Call(jen.Lit(b.Text))}
		for _, p := range b.Params {
			stmts = append(stmts, jen.Id(cmd).Dot("Bind").Call(jen.Lit(p.Seq), jen.Id(p.Name), typeLit(p.Type)))
		}
		if b.Conditional() {
			body = append(body, jen.If(jen.Id(b.Cond)).Block(stmts...))
		} else {
			body = append(body, stmts...)
		}
	}
	body = append(body, jen.List(jen.Id(query), jen.Id(args)).Op(":=").Id(cmd).Dot("Query").Call())

	db := dbName
	if db == "" {
		db = s.name("conn")
		release := s.name("release")
		body = append(body,
			jen.List(jen.Id(db), jen.Id(release), jen.Id(errV)).Op(":=").Id(recv).Dot("reg").Dot("Conn").Call(ctx),
			jen.If(jen.Id(errV).Op("!=").Nil()).Block(fail()),
			jen.Defer().Id(release).Call(),
		)
	}
	call := func(method string) jen.Code {
		return jen.Id(db).Dot(method).Call(ctx, jen.Id(query), jen.Id(args).Op("..."))
	}
	switch kind {
	case resultOne, resultAll:
		rows := s.name("rows")
		body = append(body,
			jen.List(jen.Id(rows), jen.Id(errV)).Op(":=").Add(call("QueryContext")),
			jen.If(jen.Id(errV).Op("!=").Nil()).Block(fail()),
			jen.Defer().Id(rows).Dot("Close").Call(),
			jen.Return(jen.Add(scan).Call(jen.Id(rows))),
		)
	case resultAffected:
		res := s.name("res")
		body = append(body,
			jen.List(jen.Id(res), jen.Id(errV)).Op(":=").Add(call("ExecContext")),
			jen.If(jen.Id(errV).Op("!=").Nil()).Block(fail()),
			jen.Return(jen.Id(res).Dot("RowsAffected").Call()),
		)
	default:
		body = append(body,
			jen.If(jen.List(jen.Id("_"), jen.Id(errV)).Op(":=").Add(call("ExecContext")), jen.Id(errV).Op("!=").Nil()).Block(fail()),
			jen.Return(jen.Nil()),
		)
	}

	params, results := signature(m)
	return jen.Func().Params(jen.Id(recv).Op("*").Id(impl)).Id(m.Name).Params(params...).Add(results).Block(body...), nil
}

// typeLit returns the dialect type bound with a parameter.
func typeLit(t dialect.Type) jen.Code {
	if t == dialect.TypeUnknown {
		return jen.Qual(dialectPkg, "TypeUnknown")
	}
	return jen.Lit(string(t))
}
