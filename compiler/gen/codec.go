package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/csr/compiler/decl"
)

// codecMember is a member the codec reads or writes.
type codecMember struct {
	*decl.Member
	class decl.Class
	// list is the slice or array type of list members, unwrapped from its
	// pointer when the list is nullable.
	list *decl.Type
}

// codecMembers returns the flattened members of the declaration the codec
// covers: every layer but json:"-" fields and types the codec cannot
// represent (maps, channels, funcs, nested lists, ...).
func (e *emitter) codecMembers() []codecMember {
	var ms []codecMember
	for _, l := range decl.Flatten(e.d) {
		if l.SkipJSON || l.Type == nil {
			continue
		}
		c := decl.Classify(l.Type)
		if !c.Supported() {
			continue
		}
		cm := codecMember{Member: l.Member, class: c}
		if c.List {
			cm.list = l.Type
			if cm.list.Shape == decl.ShapeNullable {
				cm.list = cm.list.Elem
			}
		}
		ms = append(ms, cm)
	}
	return ms
}

// hasMethod reports whether the declaration declares the named method.
func (e *emitter) hasMethod(name string) bool {
	for _, m := range e.d.Methods() {
		if m.Name == name {
			return true
		}
	}
	return false
}

// decoder emits Decode<Name>, which reads a value from a parsed document.
// Absent keys leave the member at its zero value.
func (e *emitter) decoder() {
	name := e.d.Name
	fn := "Decode" + exportName(name)
	var body []jen.Code
	body = append(body, jen.Var().Id("v").Id(name))
	for _, m := range e.codecMembers() {
		body = append(body, decodeMember(m))
	}
	body = append(body, jen.Return(jen.Id("v")))
	e.f.Commentf("%s decodes a %s from doc. Members whose key is absent or null keep their zero value.", fn, name)
	e.f.Func().Id(fn).Params(jen.Id("doc").Qual(jsonxPkg, "Node")).Id(name).Block(body...)

	if e.cfg.FeatureEnabled(FeatureStdJSON.Name) && !e.hasMethod("UnmarshalJSON") {
		e.f.Comment("UnmarshalJSON implements json.Unmarshaler.")
		e.f.Func().Params(jen.Id("v").Op("*").Id(name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().Block(
			jen.List(jen.Id("doc"), jen.Err()).Op(":=").Qual(jsonxPkg, "Parse").Call(jen.Id("data")),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Op("*").Id("v").Op("=").Id(fn).Call(jen.Id("doc")),
			jen.Return(jen.Nil()),
		)
	}
}

func decodeMember(m codecMember) jen.Code {
	target := jen.Id("v").Dot(m.Name)
	key := jen.Lit(m.Key())
	c := m.class
	if !c.List {
		if c.Object {
			val := decodeFunc(c.Elem).Call(jen.Id("x"))
			return jen.If(jen.List(jen.Id("x"), jen.Id("ok")).Op(":=").Id("doc").Dot("Object").Call(key), jen.Id("ok")).Block(
				assign(target, val, c.Nullable)...,
			)
		}
		val := convert(c.Elem, jen.Id("x"), c.Kind)
		return jen.If(jen.List(jen.Id("x"), jen.Id("ok")).Op(":=").Id("doc").Dot(accessor(c.Kind)).Call(key), jen.Id("ok")).Block(
			assign(target, val, c.Nullable)...,
		)
	}

	var (
		array = m.list.Len >= 0
		elem  jen.Code
		loop  jen.Code
	)
	if c.Object {
		elem = jen.If(jen.Id("item").Dot("IsObject").Call()).Block(
			appendElem(array, decodeFunc(c.Elem).Call(jen.Id("item")), c.ElemNullable)...,
		)
	} else {
		read := jen.If(jen.List(jen.Id("x"), jen.Id("ok")).Op(":=").Id("item").Dot("As"+accessor(c.Kind)).Call(), jen.Id("ok")).Block(
			appendElem(array, convert(c.Elem, jen.Id("x"), c.Kind), c.ElemNullable)...,
		)
		elem = read
	}
	if array {
		loop = jen.For(jen.List(jen.Id("i"), jen.Id("item")).Op(":=").Range().Id("items")).Block(
			jen.If(jen.Id("i").Op(">=").Len(jen.Id("list"))).Block(jen.Break()),
			elem,
		)
	} else {
		loop = jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Id("items")).Block(elem)
	}
	var init jen.Code
	if array {
		init = jen.Var().Id("list").Add(typeCode(m.list))
	} else {
		init = jen.Id("list").Op(":=").Make(typeCode(m.list), jen.Lit(0), jen.Len(jen.Id("items")))
	}
	list := jen.Id("list")
	if c.Nullable {
		list = jen.Op("&").Id("list")
	}
	// An empty list keeps a non-nullable slice nil, its zero value.
	cond := jen.Id("ok")
	if !array && !c.Nullable {
		cond = jen.Id("ok").Op("&&").Len(jen.Id("items")).Op(">").Lit(0)
	}
	return jen.If(jen.List(jen.Id("items"), jen.Id("ok")).Op(":=").Id("doc").Dot("Array").Call(key), cond).Block(
		init,
		loop,
		target.Clone().Op("=").Add(list),
	)
}

// assign assigns val to target, through a temporary when target is a pointer.
func assign(target, val jen.Code, nullable bool) []jen.Code {
	if !nullable {
		return []jen.Code{jen.Add(target).Op("=").Add(val)}
	}
	return []jen.Code{
		jen.Id("y").Op(":=").Add(val),
		jen.Add(target).Op("=").Op("&").Id("y"),
	}
}

// appendElem stores one decoded list element into list.
func appendElem(array bool, val jen.Code, nullable bool) []jen.Code {
	var stmts []jen.Code
	if nullable {
		stmts = append(stmts, jen.Id("y").Op(":=").Add(val))
		val = jen.Op("&").Id("y")
	}
	if array {
		return append(stmts, jen.Id("list").Index(jen.Id("i")).Op("=").Add(val))
	}
	return append(stmts, jen.Id("list").Op("=").Append(jen.Id("list"), val))
}

// encoder emits (*Name).EncodeJSON, which writes one JSON object. Nullable
// members are skipped when nil; the other members are always written.
func (e *emitter) encoder() {
	name := e.d.Name
	ms := e.codecMembers()
	body := []jen.Code{
		jen.If(jen.Id("v").Op("==").Nil()).Block(
			jen.Id("w").Dot("Null").Call(),
			jen.Return(),
		),
		jen.Id("w").Dot("RawByte").Call(jen.LitRune('{')),
	}
	if len(ms) > 0 {
		body = append(body, jen.Id("n").Op(":=").Lit(0))
	}
	for i, m := range ms {
		body = append(body, encodeMember(m, i == len(ms)-1)...)
	}
	body = append(body, jen.Id("w").Dot("RawByte").Call(jen.LitRune('}')))
	e.f.Commentf("EncodeJSON writes v as a JSON object. A nil %s is written as null.", name)
	e.f.Func().Params(jen.Id("v").Op("*").Id(name)).Id("EncodeJSON").Params(jen.Id("w").Op("*").Qual(jsonxPkg, "Writer")).Block(body...)

	if e.cfg.FeatureEnabled(FeatureStdJSON.Name) && !e.hasMethod("MarshalJSON") {
		e.f.Comment("MarshalJSON implements json.Marshaler.")
		e.f.Func().Params(jen.Id("v").Op("*").Id(name)).Id("MarshalJSON").Params().Params(jen.Index().Byte(), jen.Error()).Block(
			jen.Return(jen.Qual(jsonxPkg, "Marshal").Call(jen.Id("v"))),
		)
	}
}

func encodeMember(m codecMember, last bool) []jen.Code {
	var (
		c     = m.class
		field = jen.Id("v").Dot(m.Name)
		stmts = []jen.Code{jen.Id("w").Dot("Key").Call(jen.Id("n"), jen.Lit(m.Key()))}
	)
	switch {
	case c.List:
		list := field.Clone()
		if c.Nullable {
			list = jen.Parens(jen.Op("*").Add(field.Clone()))
		}
		stmts = append(stmts,
			jen.Id("w").Dot("RawByte").Call(jen.LitRune('[')),
			jen.For(jen.Id("i").Op(":=").Range().Add(list.Clone())).Block(
				jen.Id("w").Dot("Comma").Call(jen.Id("i")),
				writeValue(c, list.Clone().Index(jen.Id("i")), c.ElemNullable),
			),
			jen.Id("w").Dot("RawByte").Call(jen.LitRune(']')),
		)
	default:
		stmts = append(stmts, writeValue(c, field.Clone(), false))
	}
	if !last {
		stmts = append(stmts, jen.Id("n").Op("++"))
	}
	if c.Nullable {
		return []jen.Code{jen.If(field.Clone().Op("!=").Nil()).Block(stmts...)}
	}
	return stmts
}

// writeValue writes one value. Values of nullable members are checked for
// nil by the caller; nullable list elements are written as null.
func writeValue(c decl.Class, val *jen.Statement, elemNullable bool) jen.Code {
	if c.Object {
		return val.Dot("EncodeJSON").Call(jen.Id("w"))
	}
	read := val.Clone()
	if (c.Nullable && !c.List) || elemNullable {
		read = jen.Op("*").Add(val.Clone())
	}
	var arg jen.Code = read
	if c.Elem.Converted() {
		arg = kindCode(c.Kind).Call(read)
	}
	write := jen.Id("w").Dot(accessor(c.Kind)).Call(arg)
	if elemNullable {
		return jen.If(val.Clone().Op("==").Nil()).Block(
			jen.Id("w").Dot("Null").Call(),
		).Else().Block(write)
	}
	return write
}
