package engine

import "context"

// RootRunner is a component's abstract runRootValue (§4.3): given the
// name and args of a shape-matched top-level Select and its Child
// query, it resolves a root cursor and runs Child against it (or, for a
// Subobject, adapts and resumes), yielding a ProtoJson value (not yet
// wrapped in {fieldName: value} — the caller does that).
type RootRunner func(ctx context.Context, fieldName string, args Args, child Query) Result[ProtoJson]

// Subobject marks a field whose value is resolved by handing off to
// another Mapping entirely. Join adapts the parent cursor and the
// original child query into the subquery to run; Run is "the
// sub-mapping's interpreter" (§4.4) — its runRootValue entry point.
// Mapping is carried separately so that further Deferred nodes *inside*
// the returned proto complete against the sub-mapping's own
// ObjectMappings, not the caller's.
type Subobject struct {
	Mapping Mapping
	Join    JoinFunc
	Run     RootRunner
}

// FieldMapping is either a plain attribute/field mapping (Subobject nil,
// resolved directly by the owning component's own cursor/interpreter) or
// a Subobject crossing a component boundary.
type FieldMapping struct {
	Name      string
	Subobject *Subobject
}

// ObjectMapping binds one schema type to the RootRunner that can resolve
// it and the FieldMappings describing its fields' boundaries.
type ObjectMapping struct {
	Tpe           Type
	Interpreter   RootRunner
	FieldMappings []*FieldMapping
}

// Mapping is the boundary between sub-engines (§4.5): a named ordered
// list of ObjectMappings.
type Mapping interface {
	ObjectMappings() []*ObjectMapping
}

// StaticMapping is the straightforward Mapping implementation: a fixed,
// ordered slice of ObjectMappings supplied at construction time.
type StaticMapping struct {
	Objects []*ObjectMapping
}

func (m *StaticMapping) ObjectMappings() []*ObjectMapping { return m.Objects }

// LookupSubobject implements subobject(tpe, fieldName) (§4.4/§4.5): the
// first ObjectMapping whose Tpe matches wins outright — if that entry
// has no Subobject for fieldName, the lookup fails rather than falling
// through to a later ObjectMapping declared for the same type. Preserve
// declaration order when constructing a Mapping's Objects slice.
func LookupSubobject(m Mapping, tpe Type, fieldName string) (*Subobject, bool) {
	for _, om := range m.ObjectMappings() {
		if om.Tpe.String() != tpe.String() {
			continue
		}
		for _, fm := range om.FieldMappings {
			if fm.Name == fieldName {
				return fm.Subobject, fm.Subobject != nil
			}
		}
		return nil, false
	}
	return nil, false
}

// LookupInterpreter finds the RootRunner registered for tpe (the first
// ObjectMapping whose Tpe matches). Completion does not call it: every
// Deferred is resolved through LookupSubobject.
func LookupInterpreter(m Mapping, tpe Type) (RootRunner, bool) {
	for _, om := range m.ObjectMappings() {
		if om.Tpe.String() == tpe.String() {
			return om.Interpreter, om.Interpreter != nil
		}
	}
	return nil, false
}

// MergeMappings concatenates the ObjectMappings of several Mappings into
// one (§4.5: a host's Mapping is itself the union of its components'
// boundaries). Earlier Mappings' entries take precedence for a given
// type, per LookupSubobject's first-match rule.
func MergeMappings(ms ...Mapping) Mapping {
	var all []*ObjectMapping
	for _, m := range ms {
		if m == nil {
			continue
		}
		all = append(all, m.ObjectMappings()...)
	}
	return &StaticMapping{Objects: all}
}
