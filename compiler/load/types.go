package load

import (
	"go/types"

	"github.com/fatih/structtag"

	"github.com/syssam/csr/compiler/decl"
)

// TypeOf converts a go/types type to its descriptor. Named types resolve
// to basic kinds first, then to named scalars when their underlying type
// is basic, and to objects otherwise. Byte slices, maps, channels,
// functions, unnamed structs and generic instances are unsupported.
func TypeOf(t types.Type) *decl.Type {
	switch t := types.Unalias(t).(type) {
	case *types.Pointer:
		return decl.PointerTo(TypeOf(t.Elem()))
	case *types.Slice:
		if isByte(t.Elem()) {
			return decl.OtherOf("[]byte")
		}
		return decl.SliceOf(TypeOf(t.Elem()))
	case *types.Array:
		return decl.ArrayOf(int(t.Len()), TypeOf(t.Elem()))
	case *types.Basic:
		if k, ok := decl.LookupBasic("", t.Name()); ok {
			return decl.ScalarOf(k)
		}
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			if obj.Name() == "error" {
				return decl.ErrorType
			}
			break
		}
		if t.TypeArgs().Len() > 0 {
			break
		}
		pkg := obj.Pkg().Path()
		if k, ok := decl.LookupBasic(pkg, obj.Name()); ok {
			return decl.ScalarOf(k)
		}
		if b, ok := t.Underlying().(*types.Basic); ok {
			if k, ok := decl.LookupBasic("", b.Name()); ok {
				return decl.NamedScalar(pkg, obj.Name(), k)
			}
		}
		return decl.ObjectOf(pkg, obj.Name())
	}
	return decl.OtherOf(types.TypeString(t, (*types.Package).Name))
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Byte
}

// applyTags reads the `json` and `db` tags of a field.
func applyTags(m *decl.Member, tag string) {
	tags, err := structtag.Parse(tag)
	if err != nil {
		return
	}
	if t, err := tags.Get("json"); err == nil {
		switch {
		case t.Name == "-" && len(t.Options) == 0:
			m.SkipJSON = true
		case t.Name != "":
			m.JSONName = t.Name
		}
	}
	if t, err := tags.Get("db"); err == nil {
		switch {
		case t.Name == "-":
			m.SkipColumn = true
		case t.Name != "":
			m.Column = t.Name
		}
	}
}
