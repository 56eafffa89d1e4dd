package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/csr/compiler/decl"
)

// entityColumn is a member read from a result column.
type entityColumn struct {
	*decl.Member
	class decl.Class
	// names are the column names tried in order.
	names []string
}

// entityColumns returns the scalar members of the flattened declaration
// that are not excluded with db:"-".
func (e *emitter) entityColumns() []entityColumn {
	var cols []entityColumn
	for _, l := range decl.Flatten(e.d) {
		if l.SkipColumn || l.Type == nil {
			continue
		}
		c := decl.Classify(l.Type)
		if !c.IsBasic || c.List {
			continue
		}
		cols = append(cols, entityColumn{Member: l.Member, class: c, names: decl.ColumnCandidates(l.Member)})
	}
	return cols
}

// recordKind returns the kind a scalar is read from a sql.Record as.
func recordKind(k decl.ScalarKind) decl.ScalarKind {
	if k == decl.KindInt {
		return decl.KindInt64
	}
	return k
}

// scanner emits Scan<Name>, Scan<Plural> and their shared helpers.
func (e *emitter) scanner() {
	var (
		name    = e.d.Name
		cols    = e.entityColumns()
		ordsFn  = lowerName(name) + "Ordinals"
		rowFn   = "scan" + exportName(name) + "Row"
		ordType = jen.Index(jen.Lit(len(cols))).Int()
		one     = "Scan" + exportName(name)
		all     = "Scan" + exportName(pluralName(name))
		rowsT   = jen.Qual(sqlPkg, "ColumnScanner")
	)

	lookups := make([]jen.Code, len(cols))
	for i, c := range cols {
		names := make([]jen.Code, len(c.names))
		for j, n := range c.names {
			names[j] = jen.Lit(n)
		}
		lookups[i] = jen.Id("cols").Dot("Ordinal").Call(names...)
	}
	e.f.Commentf("%s resolves the ordinal of every %s column in cols, -1 when absent.", ordsFn, name)
	e.f.Func().Id(ordsFn).Params(jen.Id("cols").Op("*").Qual(sqlPkg, "Columns")).Add(ordType).Block(
		jen.Return(jen.Index(jen.Lit(len(cols))).Int().ValuesFunc(func(g *jen.Group) {
			for _, l := range lookups {
				g.Add(l)
			}
		})),
	)

	row := []jen.Code{}
	if len(cols) == 0 {
		row = append(row,
			jen.If(jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(sqlPkg, "ScanRecord").Call(jen.Id("rows"), jen.Id("n")), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Nil(), jen.Err()),
			),
		)
	} else {
		row = append(row,
			jen.List(jen.Id("rec"), jen.Err()).Op(":=").Qual(sqlPkg, "ScanRecord").Call(jen.Id("rows"), jen.Id("n")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		)
	}
	row = append(row, jen.Id("v").Op(":=").Op("&").Id(name).Values())
	for i, c := range cols {
		kind := recordKind(c.class.Kind)
		val := convert(c.class.Elem, jen.Id("x"), kind)
		row = append(row,
			jen.If(
				jen.List(jen.Id("x"), jen.Id("ok")).Op(":=").Id("rec").Dot(accessor(kind)).Call(jen.Id("ords").Index(jen.Lit(i))),
				jen.Id("ok"),
			).Block(assign(jen.Id("v").Dot(c.Name), val, c.class.Nullable)...),
		)
	}
	row = append(row, jen.Return(jen.Id("v"), jen.Nil()))
	e.f.Line()
	e.f.Func().Id(rowFn).Params(
		jen.Id("rows").Add(rowsT),
		jen.Id("n").Int(),
		jen.Id("ords").Add(ordType),
	).Params(jen.Op("*").Id(name), jen.Error()).Block(row...)

	columnsOf := []jen.Code{
		jen.List(jen.Id("cols"), jen.Err()).Op(":=").Qual(sqlPkg, "ColumnsOf").Call(jen.Id("rows")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
	}

	e.f.Commentf("%s reads the next row of rows into a %s. Columns are matched by name;", one, name)
	e.f.Comment("missing columns and NULL values leave their member unset. It returns nil, nil")
	e.f.Comment("when no row is left.")
	e.f.Func().Id(one).Params(jen.Id("rows").Add(rowsT)).Params(jen.Op("*").Id(name), jen.Error()).Block(
		append(columnsOf,
			jen.If(jen.Op("!").Id("rows").Dot("Next").Call()).Block(
				jen.Return(jen.Nil(), jen.Id("rows").Dot("Err").Call()),
			),
			jen.Return(jen.Id(rowFn).Call(jen.Id("rows"), jen.Id("cols").Dot("Len").Call(), jen.Id(ordsFn).Call(jen.Id("cols")))),
		)...,
	)

	e.f.Commentf("%s reads every remaining row of rows.", all)
	e.f.Func().Id(all).Params(jen.Id("rows").Add(rowsT)).Params(jen.Index().Id(name), jen.Error()).Block(
		append(columnsOf,
			jen.Id("ords").Op(":=").Id(ordsFn).Call(jen.Id("cols")),
			jen.Var().Id("out").Index().Id(name),
			jen.For(jen.Id("rows").Dot("Next").Call()).Block(
				jen.List(jen.Id("v"), jen.Err()).Op(":=").Id(rowFn).Call(jen.Id("rows"), jen.Id("cols").Dot("Len").Call(), jen.Id("ords")),
				jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
				jen.Id("out").Op("=").Append(jen.Id("out"), jen.Op("*").Id("v")),
			),
			jen.Return(jen.Id("out"), jen.Id("rows").Dot("Err").Call()),
		)...,
	)
}
