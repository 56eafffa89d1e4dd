package decl

import (
	"strconv"
)

// Shape is the outer shape of a type descriptor.
type Shape uint8

// Type shapes.
const (
	ShapeOther    Shape = iota // unsupported: maps, channels, funcs, unnamed interfaces, ...
	ShapeScalar                // one of the basic kinds
	ShapeNullable              // pointer
	ShapeList                  // slice or array
	ShapeObject                // any other named type
	ShapeResult                // (T, error) result tuple
)

// ScalarKind is a basic kind.
type ScalarKind uint8

// Basic kinds.
const (
	KindInvalid ScalarKind = iota
	KindBool
	KindInt
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindTime
	KindUUID
)

var kindNames = [...]string{"invalid", "bool", "int", "int32", "int64", "float32", "float64", "decimal", "string", "time", "uuid"}

func (k ScalarKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "ScalarKind(" + strconv.Itoa(int(k)) + ")"
}

// Basic reports whether k is a basic kind.
func (k ScalarKind) Basic() bool { return k > KindInvalid && k <= KindUUID }

// Import paths of the non-builtin basic types.
const (
	TimePkg    = "time"
	UUIDPkg    = "github.com/google/uuid"
	DecimalPkg = "github.com/shopspring/decimal"
)

// basicNames is the fixed table of basic type names.
var basicNames = map[[2]string]ScalarKind{
	{"", "bool"}:            KindBool,
	{"", "int"}:             KindInt,
	{"", "int32"}:           KindInt32,
	{"", "int64"}:           KindInt64,
	{"", "float32"}:         KindFloat32,
	{"", "float64"}:         KindFloat64,
	{"", "string"}:          KindString,
	{TimePkg, "Time"}:       KindTime,
	{UUIDPkg, "UUID"}:       KindUUID,
	{DecimalPkg, "Decimal"}: KindDecimal,
}

// LookupBasic returns the basic kind of the named type, or false.
// Builtin types have an empty package path.
func LookupBasic(pkgPath, name string) (ScalarKind, bool) {
	k, ok := basicNames[[2]string{pkgPath, name}]
	return k, ok
}

// Type describes a declared Go type.
type Type struct {
	Shape  Shape
	Scalar ScalarKind
	// Elem is the pointee, the element or the result payload.
	Elem *Type
	// Len is the length of arrays; -1 for slices.
	Len int
	// PkgPath and Name identify named types. A named scalar (type Status
	// string) has Shape ShapeScalar with its own name.
	PkgPath string
	Name    string
	// Expr is the Go source form, used for unsupported types and messages.
	Expr string
}

// ScalarOf returns the descriptor of a builtin or well-known basic type.
func ScalarOf(k ScalarKind) *Type {
	t := &Type{Shape: ShapeScalar, Scalar: k}
	switch k {
	case KindTime:
		t.PkgPath, t.Name = TimePkg, "Time"
	case KindUUID:
		t.PkgPath, t.Name = UUIDPkg, "UUID"
	case KindDecimal:
		t.PkgPath, t.Name = DecimalPkg, "Decimal"
	default:
		t.Name = k.String()
	}
	return t
}

// NamedScalar returns the descriptor of a named type whose underlying type is basic.
func NamedScalar(pkgPath, name string, k ScalarKind) *Type {
	return &Type{Shape: ShapeScalar, Scalar: k, PkgPath: pkgPath, Name: name}
}

// ObjectOf returns the descriptor of a named non-basic type.
func ObjectOf(pkgPath, name string) *Type {
	return &Type{Shape: ShapeObject, PkgPath: pkgPath, Name: name}
}

// PointerTo returns the descriptor of *elem.
func PointerTo(elem *Type) *Type { return &Type{Shape: ShapeNullable, Elem: elem} }

// SliceOf returns the descriptor of []elem.
func SliceOf(elem *Type) *Type { return &Type{Shape: ShapeList, Elem: elem, Len: -1} }

// ArrayOf returns the descriptor of [n]elem.
func ArrayOf(n int, elem *Type) *Type { return &Type{Shape: ShapeList, Elem: elem, Len: n} }

// ResultOf returns the descriptor of a (payload, error) result.
func ResultOf(payload *Type) *Type { return &Type{Shape: ShapeResult, Elem: payload} }

// OtherOf returns the descriptor of an unsupported type.
func OtherOf(expr string) *Type { return &Type{Shape: ShapeOther, Expr: expr} }

// ErrorType is the descriptor of the builtin error interface.
var ErrorType = &Type{Shape: ShapeObject, Name: "error"}

// IsError reports whether t is the builtin error type.
func (t *Type) IsError() bool {
	return t != nil && t.Shape == ShapeObject && t.PkgPath == "" && t.Name == "error"
}

// Is reports whether t is the named type pkgPath.name.
func (t *Type) Is(pkgPath, name string) bool {
	return t != nil && t.PkgPath == pkgPath && t.Name == name && (t.Shape == ShapeObject || t.Shape == ShapeScalar)
}

// IsPointerTo reports whether t is *pkgPath.name.
func (t *Type) IsPointerTo(pkgPath, name string) bool {
	return t != nil && t.Shape == ShapeNullable && t.Elem.Is(pkgPath, name)
}

// Builtin reports whether t is an unnamed-package scalar (bool, int, string, ...).
func (t *Type) Builtin() bool {
	return t.Shape == ShapeScalar && t.PkgPath == ""
}

// Converted reports whether values of t need a conversion from the Go type
// of its basic kind: named scalars and int/int32 mismatches.
func (t *Type) Converted() bool {
	if t.Shape != ShapeScalar {
		return false
	}
	base := ScalarOf(t.Scalar)
	return t.PkgPath != base.PkgPath || t.Name != base.Name
}

// FullName returns the registry key form of t: "<import path>.<Name>",
// prefixed by "*" for pointers and "[]" for slices.
func (t *Type) FullName() string {
	if t == nil {
		return ""
	}
	switch t.Shape {
	case ShapeNullable:
		return "*" + t.Elem.FullName()
	case ShapeList:
		if t.Len >= 0 {
			return "[" + strconv.Itoa(t.Len) + "]" + t.Elem.FullName()
		}
		return "[]" + t.Elem.FullName()
	case ShapeResult:
		return "(" + t.Elem.FullName() + ", error)"
	case ShapeOther:
		return t.Expr
	}
	if t.PkgPath == "" {
		return t.Name
	}
	return t.PkgPath + "." + t.Name
}

// String returns the Go form of t with package names shortened.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Shape {
	case ShapeNullable:
		return "*" + t.Elem.String()
	case ShapeList:
		if t.Len >= 0 {
			return "[" + strconv.Itoa(t.Len) + "]" + t.Elem.String()
		}
		return "[]" + t.Elem.String()
	case ShapeResult:
		return "(" + t.Elem.String() + ", error)"
	case ShapeOther:
		return t.Expr
	}
	if t.PkgPath == "" {
		return t.Name
	}
	return pkgBase(t.PkgPath) + "." + t.Name
}

func pkgBase(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// Class is the classification of a type descriptor.
type Class struct {
	// Kind is the basic kind of the value, or of the list element.
	Kind ScalarKind
	// Elem is the classified value or list element type, after unwrapping.
	Elem *Type
	// List is set for slices and arrays; ArrayLen is -1 for slices.
	List     bool
	ArrayLen int
	// Nullable is set for pointers, including pointers to lists.
	Nullable bool
	// ElemNullable is set for lists of pointers.
	ElemNullable bool
	// IsBasic is set when the value or list element is of a basic kind.
	IsBasic bool
	// Object is set when the value or list element is a named non-basic type.
	Object bool
}

// Supported reports whether the classified value is a basic kind or an object.
func (c Class) Supported() bool { return c.IsBasic || c.Object }

// Classify classifies t. A result tuple is unwrapped first; a slice or
// array marks List and classifies its element; a pointer marks Nullable
// and, when it points to a list, List as well. Unwrapping stops after one
// level in each step.
func Classify(t *Type) Class {
	c := Class{ArrayLen: -1}
	if t == nil {
		return c
	}
	if t.Shape == ShapeResult {
		t = t.Elem
	}
	switch t.Shape {
	case ShapeList:
		c.List, c.ArrayLen = true, t.Len
		t = t.Elem
	case ShapeNullable:
		c.Nullable = true
		t = t.Elem
		if t.Shape == ShapeList {
			c.List, c.ArrayLen = true, t.Len
			t = t.Elem
		}
	}
	if c.List && t.Shape == ShapeNullable {
		c.ElemNullable = true
		t = t.Elem
	}
	c.Elem = t
	switch t.Shape {
	case ShapeScalar:
		c.Kind = t.Scalar
		c.IsBasic = t.Scalar.Basic()
	case ShapeObject:
		c.Object = !t.IsError() && t.Name != ""
	}
	return c
}
