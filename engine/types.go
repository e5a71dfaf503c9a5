package engine

import "fmt"

// Type is the closed sum of GraphQL type kinds the core understands. Every
// concrete type below tags itself with isType so that arbitrary values
// can't accidentally satisfy the interface.
type Type interface {
	String() string
	isType()
}

// Scalar is a leaf value (Int, String, a custom ID, ...).
type Scalar struct {
	Name string
}

func (s *Scalar) isType()        {}
func (s *Scalar) String() string { return s.Name }

// Enum is a leaf value restricted to a fixed set of names.
type Enum struct {
	Name   string
	Values []string
}

func (e *Enum) isType()        {}
func (e *Enum) String() string { return e.Name }

// FieldDef describes a single field of an Object, Interface, or Input.
type FieldDef struct {
	Name string
	Type Type
	Args map[string]Type
}

// Object is a concrete object type with named fields.
type Object struct {
	Name       string
	Fields     map[string]*FieldDef
	Interfaces []string // names of interfaces this object implements
}

func (o *Object) isType()        {}
func (o *Object) String() string { return o.Name }

func (o *Object) Field(name string) (*FieldDef, bool) {
	f, ok := o.Fields[name]
	return f, ok
}

// Interface is an abstract type; concrete objects narrow to it.
type Interface struct {
	Name          string
	Fields        map[string]*FieldDef
	PossibleTypes []string // names of Objects implementing this interface
}

func (i *Interface) isType()        {}
func (i *Interface) String() string { return i.Name }

func (i *Interface) Field(name string) (*FieldDef, bool) {
	f, ok := i.Fields[name]
	return f, ok
}

// Union is an abstract type defined purely by its member object names.
type Union struct {
	Name          string
	PossibleTypes []string
}

func (u *Union) isType()        {}
func (u *Union) String() string { return u.Name }

// Input is an object type accepted as an argument value, never queried.
type Input struct {
	Name   string
	Fields map[string]*FieldDef
}

func (in *Input) isType()        {}
func (in *Input) String() string { return in.Name }

// List wraps an element type; Cursor.IsList must hold wherever this appears.
type List struct {
	Of Type
}

func (l *List) isType()        {}
func (l *List) String() string { return fmt.Sprintf("[%s]", l.Of) }

// Nullable wraps a type that may be absent.
type Nullable struct {
	Of Type
}

func (n *Nullable) isType()        {}
func (n *Nullable) String() string { return fmt.Sprintf("%s?", n.Of) }

// TypeRef is an unresolved reference by name, produced during elaboration
// and resolved against Schema.Types by the interpreter's runValue.
type TypeRef struct {
	Name string
}

func (r *TypeRef) isType()        {}
func (r *TypeRef) String() string { return r.Name }

// attributeType is the synthetic scalar type used by
// Context.ForFieldOrAttribute when a mapping-level pseudo-field has no
// declared schema field (e.g. a SQL column exposed only to the mapping).
var attributeType Type = &Scalar{Name: "attribute"}

// Schema is the consumed, already-validated schema surface (§6). The core
// never constructs or validates a Schema; it only resolves TypeRefs and
// walks the query-type root.
type Schema struct {
	Types     map[string]Type
	QueryType Type
}

// Resolve looks up a named type, following TypeRef transparently.
func (s *Schema) Resolve(t Type) (Type, error) {
	ref, ok := t.(*TypeRef)
	if !ok {
		return t, nil
	}
	found, ok := s.Types[ref.Name]
	if !ok {
		return nil, NewProblem(UnknownType, "unknown type: %s", ref.Name)
	}
	return found, nil
}

// Underlying strips Nullable/List wrappers down to the innermost named type.
func Underlying(t Type) Type {
	for {
		switch v := t.(type) {
		case *Nullable:
			t = v.Of
		case *List:
			t = v.Of
		default:
			return t
		}
	}
}

// UnderlyingObject returns the Object/Interface a type wraps, if any.
func UnderlyingObject(t Type) (Type, bool) {
	switch Underlying(t).(type) {
	case *Object, *Interface:
		return Underlying(t), true
	default:
		return nil, false
	}
}

// FieldOf looks up a declared field on an Object or Interface type.
func FieldOf(t Type, name string) (*FieldDef, bool) {
	switch v := t.(type) {
	case *Object:
		return v.Field(name)
	case *Interface:
		return v.Field(name)
	default:
		return nil, false
	}
}

// NarrowsTo reports whether a cursor positioned at tpe can be narrowed to
// sub: sub must be a concrete Object that is tpe itself, or that is listed
// as a possible type of an Interface/Union tpe.
func NarrowsTo(tpe Type, sub Type) bool {
	subObj, ok := sub.(*Object)
	if !ok {
		return false
	}
	switch t := tpe.(type) {
	case *Object:
		return t.Name == subObj.Name
	case *Interface:
		return containsName(t.PossibleTypes, subObj.Name)
	case *Union:
		return containsName(t.PossibleTypes, subObj.Name)
	default:
		return false
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
