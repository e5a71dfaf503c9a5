package engine

import "fmt"

// Query is the closed, tagged sum that is the query algebra of §3/§9.
// Elaboration (external to the core) produces a Query tree; the core
// only normalizes (normalize.go) and interprets it (interpreter.go).
type Query interface {
	isQuery()
}

// Args are the bindings (name -> value) accompanying a Select: scalar,
// enum, list, or input-object values already elaborated by the caller.
type Args map[string]interface{}

// Select names a field, with its arguments, and continues with Child.
type Select struct {
	Name  string
	Alias string
	Args  Args
	Child Query
}

func (*Select) isQuery() {}

// ResultName is the emitted field name: the alias if one was given, else
// Name itself.
func (s *Select) ResultName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// Group combines sibling queries evaluated at the same cursor position.
type Group struct {
	Queries []Query
}

func (*Group) isQuery() {}

// GroupList is like Group, but its results are collected as a JSON list
// rather than merged into sibling object fields.
type GroupList struct {
	Queries []Query
}

func (*GroupList) isQuery() {}

// Unique yields the single element of its list-producing Child: null
// when the list is empty, a TooManyResults problem when it holds more
// than one element.
type Unique struct {
	Child Query
}

func (*Unique) isQuery() {}

// Predicate tests a single element cursor during Filter.
type Predicate func(Cursor) bool

// Filter retains only the elements of a list-producing Child satisfying
// Pred.
type Filter struct {
	Pred  Predicate
	Child Query
}

func (*Filter) isQuery() {}

// NullsOrder controls where missing values sort during OrderBy.
// NullsUnspecified is the zero value: a selection built without setting
// Nulls explicitly defers to the Interpreter's Config.DefaultNullsOrder
// rather than silently behaving as NullsLast.
type NullsOrder int

const (
	NullsUnspecified NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderSelection is one term of an OrderBy: a field path, a direction,
// and a nulls placement.
type OrderSelection struct {
	Path  []string
	Desc  bool
	Nulls NullsOrder
}

// OrderBy stable-sorts the elements of a list-producing Child
// lexicographically over Selections.
type OrderBy struct {
	Selections []OrderSelection
	Child      Query
}

func (*OrderBy) isQuery() {}

// Limit bounds a list-producing Child to at most N elements.
type Limit struct {
	N     int
	Child Query
}

func (*Limit) isQuery() {}

// Offset skips the first N elements of a list-producing Child.
type Offset struct {
	N     int
	Child Query
}

func (*Offset) isQuery() {}

// Narrow runs Child only if the cursor's focus narrows to Sub (§3);
// elsewhere emission is skipped. This is the post-elaboration,
// schema-resolved form of UntypedNarrow.
type Narrow struct {
	Sub   Type
	Child Query
}

func (*Narrow) isQuery() {}

// UntypedNarrow is the pre-elaboration form of Narrow, referring to the
// narrowed type only by name; elaboration replaces it with Narrow before
// the core ever sees the query (§6).
type UntypedNarrow struct {
	Name  string
	Child Query
}

func (*UntypedNarrow) isQuery() {}

// Skip implements @skip/@include. When Include is true the node behaves
// as @include(if: Cond): it emits iff Cond is true. When Include is
// false it behaves as @skip(if: Cond): it emits iff Cond is false.
type Skip struct {
	Include bool
	Cond    bool
	Child   Query
}

func (*Skip) isQuery() {}

// Wrap nests Child's result inside an object field named Name.
type Wrap struct {
	Name  string
	Child Query
}

func (*Wrap) isQuery() {}

// Rename changes the emitted field name of Child, independent of the
// schema field name Child itself selects.
type Rename struct {
	Name  string
	Child Query
}

func (*Rename) isQuery() {}

// Count emits the length of Child's top-level elements under Name.
type Count struct {
	Name  string
	Child Query
}

func (*Count) isQuery() {}

// Introspect carries a Schema alongside Child. The interpreter runs
// Child against the current cursor, exactly as it would without the
// wrapper; Schema is not consulted and no introspection view is built.
type Introspect struct {
	Schema *Schema
	Child  Query
}

func (*Introspect) isQuery() {}

// JoinFunc adapts a cursor and a subquery before a deferred stage
// resumes; the default join (IdentityJoin) passes the subquery through
// unchanged.
type JoinFunc func(Cursor, Query) Result[Query]

// IdentityJoin is the default JoinFunc: it returns q unchanged.
func IdentityJoin(_ Cursor, q Query) Result[Query] {
	return Succeed(q)
}

// Defer continues Child in the next stage of the same interpreter,
// emitting a ProtoJson.Deferred node that a later completion pass
// resumes via RootTpe.
type Defer struct {
	Join    JoinFunc
	Child   Query
	RootTpe Type
}

func (*Defer) isQuery() {}

// Component marks a boundary where execution hands off to another
// Mapping's interpreter entirely (§4.3/§4.5).
type Component struct {
	Mapping Mapping
	Join    JoinFunc
	Child   Query
}

func (*Component) isQuery() {}

// Environment extends the lexical env for Child (§5: "each Environment
// extension creates a new cursor environment frame").
type Environment struct {
	Env   Env
	Child Query
}

func (*Environment) isQuery() {}

// Empty is the terminal no-op and the identity element of merge (~).
type Empty struct{}

func (*Empty) isQuery() {}

// Skipped is a placeholder for an eliminated node; the interpreter
// emits nothing for it (Render shows it as "Skipped").
type Skipped struct{}

func (*Skipped) isQuery() {}

// Render produces a deterministic debug string for a Query tree, used by
// the round-trip/idempotence tests of §8.
func Render(q Query) string {
	switch v := q.(type) {
	case nil:
		return "<nil>"
	case *Select:
		return fmt.Sprintf("Select(%s as %s, args=%v, %s)", v.Name, v.ResultName(), v.Args, Render(v.Child))
	case *Group:
		return fmt.Sprintf("Group%s", renderAll(v.Queries))
	case *GroupList:
		return fmt.Sprintf("GroupList%s", renderAll(v.Queries))
	case *Unique:
		return fmt.Sprintf("Unique(%s)", Render(v.Child))
	case *Filter:
		return fmt.Sprintf("Filter(%s)", Render(v.Child))
	case *OrderBy:
		return fmt.Sprintf("OrderBy(%v, %s)", v.Selections, Render(v.Child))
	case *Limit:
		return fmt.Sprintf("Limit(%d, %s)", v.N, Render(v.Child))
	case *Offset:
		return fmt.Sprintf("Offset(%d, %s)", v.N, Render(v.Child))
	case *Narrow:
		return fmt.Sprintf("Narrow(%s, %s)", v.Sub, Render(v.Child))
	case *UntypedNarrow:
		return fmt.Sprintf("UntypedNarrow(%s, %s)", v.Name, Render(v.Child))
	case *Skip:
		return fmt.Sprintf("Skip(include=%v, cond=%v, %s)", v.Include, v.Cond, Render(v.Child))
	case *Wrap:
		return fmt.Sprintf("Wrap(%s, %s)", v.Name, Render(v.Child))
	case *Rename:
		return fmt.Sprintf("Rename(%s, %s)", v.Name, Render(v.Child))
	case *Count:
		return fmt.Sprintf("Count(%s, %s)", v.Name, Render(v.Child))
	case *Introspect:
		return fmt.Sprintf("Introspect(%s)", Render(v.Child))
	case *Defer:
		return fmt.Sprintf("Defer(%s)", Render(v.Child))
	case *Component:
		return fmt.Sprintf("Component(%s)", Render(v.Child))
	case *Environment:
		return fmt.Sprintf("Environment(%s)", Render(v.Child))
	case *Empty:
		return "Empty"
	case *Skipped:
		return "Skipped"
	default:
		return fmt.Sprintf("<unknown %T>", v)
	}
}

func renderAll(qs []Query) string {
	s := "("
	for i, q := range qs {
		if i > 0 {
			s += ", "
		}
		s += Render(q)
	}
	return s + ")"
}
