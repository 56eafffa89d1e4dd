package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/csr/compiler/decl"
)

// apiName returns the name of the generated service interface.
func (e *emitter) apiName() string {
	return e.d.Name + "API"
}

// service emits <Name>API, the interface of the exported methods of a
// service struct.
func (e *emitter) service() error {
	d := e.d
	if d.Kind != decl.Struct {
		return e.errorf(nil, "a service must be a struct")
	}
	if !e.cfg.FeatureEnabled(FeatureServiceAPI.Name) {
		return nil
	}
	var methods []jen.Code
	for _, m := range d.Methods() {
		if !m.Exported {
			continue
		}
		for _, line := range docLines(m.Doc) {
			methods = append(methods, jen.Comment(line))
		}
		params, results := signature(m)
		methods = append(methods, jen.Id(m.Name).Params(params...).Add(results))
	}
	api := e.apiName()
	e.f.Commentf("%s is the interface of %s.", api, d.Name)
	e.f.Type().Id(api).Interface(methods...)
	e.f.Var().Id("_").Id(api).Op("=").Parens(jen.Op("*").Id(d.Name)).Parens(jen.Nil())
	return nil
}

func docLines(doc string) []string {
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}

// registryKey returns the key the declaration is provided under and the
// aliases it is reachable by.
func (e *emitter) registryKey() (string, []string) {
	d := e.d
	switch ptr := "*" + d.FullName(); {
	case d.Roles.Has(decl.RoleMapper):
		return d.FullName(), nil
	case d.Roles.Has(decl.RoleService) && e.cfg.FeatureEnabled(FeatureServiceAPI.Name):
		return d.PkgPath + "." + e.apiName(), []string{ptr}
	default:
		return ptr, nil
	}
}

// registration emits <Name>Key and Register<Name>, which provides the
// declaration to a registry. Controllers also add their mount function.
func (e *emitter) registration() error {
	d := e.d
	factory, err := e.factory()
	if err != nil {
		return err
	}
	key, aliases := e.registryKey()
	keyName := d.Name + "Key"
	r := jen.Id("r")

	e.f.Commentf("%s is the registry key of %s.", keyName, d.Name)
	e.f.Const().Id(keyName).Op("=").Lit(key)

	body := []jen.Code{r.Clone().Dot("Provide").Call(jen.Id(keyName), factory)}
	for _, alias := range aliases {
		body = append(body, r.Clone().Dot("Alias").Call(jen.Lit(alias), jen.Id(keyName)))
	}
	if d.Roles.Has(decl.RoleController) {
		body = append(body, r.Clone().Dot("AddController").Call(jen.Id(keyName), jen.Id(mountName(d))))
	}
	e.f.Commentf("%s registers %s in r.", registerName(d), d.Name)
	e.f.Func().Id(registerName(d)).Params(jen.Id("r").Op("*").Qual(csrPkg, "Registry")).Block(body...)
	return nil
}

func registerName(d *decl.Declaration) string {
	return "Register" + exportName(d.Name)
}

// factory returns the function building the declaration. Constructor
// parameters are resolved from the registry by the full name of their type.
func (e *emitter) factory() (jen.Code, error) {
	d := e.d
	sig := jen.Func().Params(jen.Id("r").Op("*").Qual(csrPkg, "Registry")).Params(jen.Id("any"), jen.Error())
	if d.Roles.Has(decl.RoleMapper) {
		return sig.Block(jen.Return(jen.Id("New"+d.Name).Call(jen.Id("r")), jen.Nil())), nil
	}
	ctor := d.Ctor
	if ctor == nil {
		return sig.Block(jen.Return(jen.Op("&").Id(d.Name).Values(), jen.Nil())), nil
	}
	switch n := len(ctor.Results); {
	case n == 1 && !ctor.Results[0].IsError():
	case n == 2 && ctor.ReturnsError():
	default:
		return nil, e.errorf(nil, "%s must return the %s and an optional error", ctor.Name, d.Name)
	}

	var (
		s    = scope{"r": true, "err": true}
		body []jen.Code
		args []jen.Code
	)
	for _, p := range ctor.Params {
		if p.Type.Shape == decl.ShapeOther {
			return nil, e.errorf(nil, "parameter %s of %s has unsupported type %s", p.Name, ctor.Name, p.Type)
		}
		v := s.name(p.Name)
		body = append(body,
			jen.List(jen.Id(v), jen.Err()).Op(":=").Qual(csrPkg, "Resolve").Types(typeCode(p.Type)).Call(jen.Id("r"), jen.Lit(p.Type.FullName())),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		)
		args = append(args, jen.Id(v))
	}
	call := jen.Id(ctor.Name).Call(args...)
	if ctor.ReturnsError() {
		body = append(body, jen.Return(call))
	} else {
		body = append(body, jen.Return(call, jen.Nil()))
	}
	return sig.Block(body...), nil
}
