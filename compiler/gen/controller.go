package gen

import (
	"regexp"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/csr/compiler/decl"
)

// httpMethods maps the verbs of //csr:http onto the net/http constants.
var httpMethods = map[string]string{
	"GET":     "MethodGet",
	"POST":    "MethodPost",
	"PUT":     "MethodPut",
	"PATCH":   "MethodPatch",
	"DELETE":  "MethodDelete",
	"HEAD":    "MethodHead",
	"OPTIONS": "MethodOptions",
}

// routeVar matches the {name} and {*name} variables of a route.
var routeVar = regexp.MustCompile(`\{(\*?)([A-Za-z_][A-Za-z0-9_]*)\}`)

// ginPath rewrites route variables to the gin syntax.
func ginPath(route string) string {
	return routeVar.ReplaceAllStringFunc(route, func(s string) string {
		m := routeVar.FindStringSubmatch(s)
		if m[1] == "*" {
			return "*" + m[2]
		}
		return ":" + m[2]
	})
}

// routeVars returns the variable names of the given routes.
func routeVars(routes ...string) map[string]bool {
	vars := make(map[string]bool)
	for _, r := range routes {
		for _, m := range routeVar.FindAllStringSubmatch(r, -1) {
			vars[m[2]] = true
		}
	}
	return vars
}

func mountName(d *decl.Declaration) string {
	return "Mount" + exportName(d.Name)
}

// controller emits Mount<Name>, which adds one gin handler per //csr:http
// method of the controller.
func (e *emitter) controller() error {
	d := e.d
	if d.Kind != decl.Struct {
		return e.errorf(nil, "a controller must be a struct")
	}
	prefix := d.Arg(decl.ArgRoute)
	var handlers []jen.Code
	for _, m := range d.Methods() {
		dir := m.Directive(decl.DirHTTP)
		if dir == nil {
			continue
		}
		h, err := e.handler(m, dir, prefix)
		if err != nil {
			return err
		}
		handlers = append(handlers, h)
	}
	var body []jen.Code
	if len(handlers) > 0 {
		body = append(body, jen.Id("g").Op(":=").Id("router").Dot("Group").Call(jen.Lit(ginPath(prefix))))
		body = append(body, handlers...)
	}
	e.f.Commentf("%s mounts the routes of %s on router. Each request resolves the", mountName(d), d.Name)
	e.f.Comment("controller from r.")
	e.f.Func().Id(mountName(d)).Params(
		jen.Id("r").Op("*").Qual(csrPkg, "Registry"),
		jen.Id("router").Qual(ginPkg, "IRouter"),
	).Block(body...)
	return nil
}

// handler emits the g.Handle call of one controller method.
func (e *emitter) handler(m *decl.Member, dir *decl.Directive, prefix string) (jen.Code, error) {
	verb := strings.ToUpper(dir.Arg(0))
	method, ok := httpMethods[verb]
	if !ok {
		return nil, e.errorf(m, "unknown HTTP method %q", dir.Arg(0))
	}
	path := dir.Arg(1)
	var (
		s    = scope{"r": true, "g": true, "router": true}
		c    = s.name("c")
		ctrl = s.name("ctrl")
		errV = s.name("err")
		vars = routeVars(prefix, path)
		body []jen.Code
		args []jen.Code
	)
	fail := jen.If(jen.Id(errV).Op("!=").Nil()).Block(
		jen.Qual(webPkg, "Fail").Call(jen.Id(c), jen.Id(errV)),
		jen.Return(),
	)
	body = append(body,
		jen.List(jen.Id(ctrl), jen.Id(errV)).Op(":=").Qual(csrPkg, "Resolve").Types(jen.Op("*").Id(e.d.Name)).Call(jen.Id("r"), jen.Id(e.d.Name+"Key")),
		fail,
	)
	for _, p := range m.Params {
		arg, stmts, err := e.bind(m, p, vars, s, c, errV)
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
		if len(stmts) > 0 {
			body = append(body, fail)
		}
		args = append(args, arg)
	}

	call := jen.Id(ctrl).Dot(m.Name).Call(args...)
	out := func(res jen.Code) jen.Code {
		return jen.Qual(webPkg, "Output").Call(jen.Id(c), res)
	}
	switch ret := m.Return(); {
	case ret == nil:
		body = append(body, call, out(jen.Nil()))
	case ret.IsError():
		body = append(body,
			jen.If(jen.Id(errV).Op(":=").Add(call), jen.Id(errV).Op("!=").Nil()).Block(
				jen.Qual(webPkg, "Fail").Call(jen.Id(c), jen.Id(errV)),
				jen.Return(),
			),
			out(jen.Nil()),
		)
	case ret.Shape == decl.ShapeResult:
		res := s.name("res")
		result, err := e.result(m, ret.Elem, jen.Id(res))
		if err != nil {
			return nil, err
		}
		body = append(body,
			jen.List(jen.Id(res), jen.Id(errV)).Op(":=").Add(call),
			fail,
			out(result),
		)
	default:
		res := s.name("res")
		result, err := e.result(m, ret, jen.Id(res))
		if err != nil {
			return nil, err
		}
		body = append(body, jen.Id(res).Op(":=").Add(call), out(result))
	}

	return jen.Id("g").Dot("Handle").Call(
		jen.Qual("net/http", method),
		jen.Lit(ginPath(path)),
		jen.Func().Params(jen.Id(c).Op("*").Qual(ginPkg, "Context")).Block(body...),
	), nil
}

// bind returns the argument passed for p and the statements reading it
// from the request.
func (e *emitter) bind(m *decl.Member, p *decl.Param, vars map[string]bool, s scope, c, errV string) (jen.Code, []jen.Code, error) {
	t := p.Type
	switch {
	case t.Is("context", "Context"):
		return jen.Qual(webPkg, "Context").Call(jen.Id(c)), nil, nil
	case t.IsPointerTo(ginPkg, "Context"):
		return jen.Id(c), nil, nil
	}
	class := decl.Classify(t)
	src := p.Source
	if src == decl.SourceAuto {
		switch {
		case vars[p.BindKey()]:
			src = decl.SourceRoute
		case class.Object:
			src = decl.SourceBody
		default:
			src = decl.SourceQuery
		}
	}
	unbindable := func(why string) error {
		return e.errorf(m, "cannot bind parameter %s of type %s from %s: %s", p.Name, t, src, why)
	}
	v := s.name(p.Name)
	switch src {
	case decl.SourceContext:
		return nil, nil, unbindable("only context.Context and *gin.Context are")
	case decl.SourceBody:
		if !class.Object || class.List {
			return nil, nil, unbindable("the body binds objects only")
		}
		fn := "Body"
		if class.Nullable {
			fn = "OptionalBody"
		}
		return jen.Id(v), []jen.Code{
			jen.List(jen.Id(v), jen.Id(errV)).Op(":=").Qual(webPkg, fn).Call(jen.Id(c), jen.Lit(p.Name), decodeFunc(class.Elem)),
		}, nil
	}

	if !class.IsBasic {
		return nil, nil, unbindable("not a basic type")
	}
	parser := jen.Qual(webPkg, accessor(class.Kind))
	if class.List {
		var raw jen.Code
		switch src {
		case decl.SourceQuery:
			raw = jen.Qual(webPkg, "QueryAll").Call(jen.Id(c), jen.Lit(p.BindKey()))
		case decl.SourceHeader:
			raw = jen.Qual(webPkg, "HeaderAll").Call(jen.Id(c), jen.Lit(p.BindKey()))
		default:
			return nil, nil, unbindable("a route variable holds one value")
		}
		if class.ArrayLen >= 0 || class.ElemNullable || class.Elem.Converted() {
			return nil, nil, unbindable("lists bind slices of basic types only")
		}
		if !class.Nullable {
			return jen.Id(v), []jen.Code{
				jen.List(jen.Id(v), jen.Id(errV)).Op(":=").Qual(webPkg, "RequiredList").Call(raw, jen.Lit(p.Name), parser),
			}, nil
		}
		list := s.name(p.Name + "List")
		return jen.Id(v), []jen.Code{
			jen.List(jen.Id(list), jen.Id(errV)).Op(":=").Qual(webPkg, "List").Call(raw, jen.Lit(p.Name), parser),
			jen.Var().Id(v).Add(typeCode(t)),
			jen.If(jen.Len(jen.Id(list)).Op(">").Lit(0)).Block(jen.Id(v).Op("=").Op("&").Id(list)),
		}, nil
	}

	var raw jen.Code
	switch src {
	case decl.SourceRoute:
		raw = jen.Qual(webPkg, "Route").Call(jen.Id(c), jen.Lit(p.BindKey()))
	case decl.SourceQuery:
		raw = jen.Qual(webPkg, "Query").Call(jen.Id(c), jen.Lit(p.BindKey()))
	default:
		raw = jen.Qual(webPkg, "Header").Call(jen.Id(c), jen.Lit(p.BindKey()))
	}
	if !class.Nullable {
		return convert(class.Elem, jen.Id(v), class.Kind), []jen.Code{
			jen.List(jen.Id(v), jen.Id(errV)).Op(":=").Qual(webPkg, "Required").Call(raw, jen.Lit(p.Name), parser),
		}, nil
	}
	var arg jen.Code = jen.Id(v)
	if class.Elem.Converted() {
		arg = jen.Parens(jen.Op("*").Add(typeCode(class.Elem))).Call(jen.Id(v))
	}
	return arg, []jen.Code{
		jen.List(jen.Id(v), jen.Id(errV)).Op(":=").Qual(webPkg, "Optional").Call(raw, jen.Lit(p.Name), parser),
	}, nil
}

// result returns the web.Result written for the payload res of type t.
func (e *emitter) result(m *decl.Member, t *decl.Type, res *jen.Statement) (jen.Code, error) {
	class := decl.Classify(t)
	switch {
	case t.IsPointerTo(webPkg, "Result"):
		return res, nil
	case t.Shape == decl.ShapeOther && t.Expr == "[]byte":
		return jen.Qual(webPkg, "Raw").Call(jen.Qual("net/http", "StatusOK"), jen.Lit("application/octet-stream"), res), nil
	case t.Shape == decl.ShapeScalar && t.Scalar == decl.KindString:
		var text jen.Code = res
		if t.Converted() {
			text = jen.String().Call(res)
		}
		return jen.Qual(webPkg, "Text").Call(jen.Qual("net/http", "StatusOK"), text), nil
	case !class.Object || class.ElemNullable:
	case class.List && !class.Nullable && class.ArrayLen < 0:
		return jen.Qual(webPkg, "OK").Call(jen.Qual(jsonxPkg, "SliceOf").Call(res)), nil
	case class.List:
	case class.Nullable:
		return jen.Qual(webPkg, "OK").Call(res), nil
	default:
		return jen.Qual(webPkg, "OK").Call(jen.Op("&").Add(res)), nil
	}
	return nil, e.errorf(m, "unsupported result %s", t)
}
