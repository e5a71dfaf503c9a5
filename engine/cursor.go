package engine

// Json is the plain, fully-materialized JSON value shape produced by leaf
// cursors and carried inside PureJson.
type Json = interface{}

// Maybe stands in for Option<Cursor>: Ok is false when the underlying
// model value is absent at a Nullable position.
type Maybe struct {
	Cursor Cursor
	Ok     bool
}

// Cursor is a capability set, not an inheritance hierarchy (§9): any
// back-end value model implements these primitive operations, and the
// derived navigation helpers below are built only in terms of them.
//
// Invariant (§3): a cursor's Focus must satisfy Context().Tpe; IsLeaf iff
// tpe is Scalar/Enum; IsList iff tpe is List; IsNullable iff tpe is
// Nullable. Narrow is defined only where NarrowsTo holds.
type Cursor interface {
	Context() Context
	Focus() interface{}
	Parent() (Cursor, bool)
	Env() Env

	IsLeaf() bool
	IsList() bool
	IsNullable() bool
	IsNull() bool
	HasField(name string) bool
	NarrowsTo(sub Type) bool

	AsLeaf() Result[Json]
	AsList() Result[[]Cursor]
	AsNullable() Result[Maybe]
	Narrow(sub Type) Result[Cursor]
	Field(name, alias string, args map[string]interface{}) Result[Cursor]
}

// envCursor extends a Cursor with an additional Env frame (§4.1's
// lexically-scoped Env, extended by an Environment query node) without
// requiring every Mapping's Cursor implementation to know about scoping.
// It delegates everything to the wrapped cursor except Env/Parent, and
// re-wraps whatever Cursor its navigation methods return so the
// extension stays visible to every descendant in this subtree.
type envCursor struct {
	Cursor
	env Env
}

// WithEnv returns a Cursor identical to c but with env added to its own
// Env frame (right-biased: env's keys win over c's on lookup).
func WithEnv(c Cursor, env Env) Cursor {
	if env.IsEmpty() {
		return c
	}
	return &envCursor{Cursor: c, env: env}
}

func (e *envCursor) Env() Env { return e.Cursor.Env().Add(e.env) }

func (e *envCursor) Parent() (Cursor, bool) {
	parent, ok := e.Cursor.Parent()
	if !ok {
		return nil, false
	}
	return WithEnv(parent, e.env), true
}

func (e *envCursor) AsList() Result[[]Cursor] {
	r := e.Cursor.AsList()
	cursors, ok := r.Value()
	if !ok {
		return r
	}
	wrapped := make([]Cursor, len(cursors))
	for i, c := range cursors {
		wrapped[i] = WithEnv(c, e.env)
	}
	return Warn(wrapped, r.Problems()...)
}

func (e *envCursor) AsNullable() Result[Maybe] {
	r := e.Cursor.AsNullable()
	m, ok := r.Value()
	if !ok {
		return r
	}
	if m.Ok {
		m.Cursor = WithEnv(m.Cursor, e.env)
	}
	return Warn(m, r.Problems()...)
}

func (e *envCursor) Narrow(sub Type) Result[Cursor] {
	r := e.Cursor.Narrow(sub)
	c, ok := r.Value()
	if !ok {
		return r
	}
	return Warn(WithEnv(c, e.env), r.Problems()...)
}

func (e *envCursor) Field(name, alias string, args map[string]interface{}) Result[Cursor] {
	r := e.Cursor.Field(name, alias, args)
	c, ok := r.Value()
	if !ok {
		return r
	}
	return Warn(WithEnv(c, e.env), r.Problems()...)
}

func typeMismatch(c Cursor, want string) *Problem {
	return ProblemAt(c.Context(), TypeMismatch, nil, "expected %s, got %s", want, c.Context().Tpe)
}

// FieldNotFoundProblem builds the canonical FieldNotFound problem for a
// selection naming an unknown field on the cursor's current type.
func FieldNotFoundProblem(c Cursor, name string) *Problem {
	return ProblemAt(c.Context(), FieldNotFound, []string{name}, "no field %q on type %s", name, c.Context().Tpe)
}

// As extracts the cursor's typed Focus, failing when the dynamic type of
// Focus does not match T exactly (the typed-any extraction of §3).
func As[T any](c Cursor) (T, bool) {
	var zero T
	v, ok := c.Focus().(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// FullEnv walks the parent chain and merges every frame's Env, innermost
// (self) winning over outer frames — fullEnv = parent.fullEnv ⊕ self.env.
func FullEnv(c Cursor) Env {
	parent, ok := c.Parent()
	if !ok {
		return c.Env()
	}
	return FullEnv(parent).Add(c.Env())
}

// EnvGet performs the cursor-chain typed environment lookup of §4.1:
// self.Env() is tried first, then each ancestor's own Env in turn.
func EnvGet[T any](c Cursor, name string) (T, bool) {
	cur := c
	for {
		if v, ok := Get[T](cur.Env(), name); ok {
			return v, true
		}
		parent, ok := cur.Parent()
		if !ok {
			var zero T
			return zero, false
		}
		cur = parent
	}
}

// HasPath reports whether every step in names resolves, transparently
// unwrapping nullables (absence fails the path) along the way. No
// intermediate step may be list-typed except possibly the last one.
func HasPath(c Cursor, names []string) bool {
	_, err := walkPath(c, names, false)
	return err == nil
}

// Path resolves a scalar (non-list) navigation through names.
func Path(c Cursor, names []string) Result[Cursor] {
	cur, err := walkPath(c, names, false)
	if err != nil {
		return Fail[Cursor](err)
	}
	return Succeed(cur)
}

// NullableHasField reports whether c, after unwrapping one layer of
// nullability if present, has the named field.
func NullableHasField(c Cursor, name string) bool {
	cur := c
	if cur.IsNullable() {
		m := cur.AsNullable()
		v, ok := m.Value()
		if !ok || !v.Ok {
			return false
		}
		cur = v.Cursor
	}
	return cur.HasField(name)
}

// NullableField navigates to name after unwrapping one layer of
// nullability, yielding Maybe{Ok: false} if the nullable was absent.
func NullableField(c Cursor, name, alias string) Result[Maybe] {
	cur := c
	if cur.IsNullable() {
		m, ok := c.AsNullable().Value()
		if !ok {
			return Fail[Maybe](c.AsNullable().Problems()...)
		}
		if !m.Ok {
			return Succeed(Maybe{Ok: false})
		}
		cur = m.Cursor
	}
	fr := cur.Field(name, alias, nil)
	next, ok := fr.Value()
	if !ok {
		return Fail[Maybe](fr.Problems()...)
	}
	return Warn(Maybe{Cursor: next, Ok: true}, fr.Problems()...)
}

// HasListPath is like HasPath but allows list segments anywhere along
// the path, not just at the end: it reports whether walking names the
// way ListPath does reaches at least one cursor.
func HasListPath(c Cursor, names []string) bool {
	cursors, err := listWalk([]Cursor{c}, names)
	return err == nil && len(cursors) > 0
}

// ListPath folds along names, transparently unwrapping nullables (an
// absent nullable contributes no cursors) and flat-mapping across list
// segments, returning every cursor reached at the terminal position.
func ListPath(c Cursor, names []string) Result[[]Cursor] {
	cursors, err := listWalk([]Cursor{c}, names)
	if err != nil {
		return Fail[[]Cursor](err)
	}
	return Succeed(cursors)
}

// FlatListPath is ListPath, additionally flattening when the terminal
// position is itself a list.
func FlatListPath(c Cursor, names []string) Result[[]Cursor] {
	r := ListPath(c, names)
	cursors, ok := r.Value()
	if !ok {
		return r
	}
	var out []Cursor
	var problems []*Problem
	for _, cur := range cursors {
		if cur.IsList() {
			lr := cur.AsList()
			els, ok := lr.Value()
			if !ok {
				problems = append(problems, lr.Problems()...)
				continue
			}
			out = append(out, els...)
			problems = append(problems, lr.Problems()...)
		} else {
			out = append(out, cur)
		}
	}
	if len(problems) > 0 {
		return Warn(out, problems...)
	}
	return Succeed(out)
}

// walkPath advances step by step through names, unwrapping nullables as
// it goes. If allowList is false, encountering a list before the final
// step is an error; the final step may itself be a list cursor (its
// elements are not expanded here — callers that need elements use
// ListPath/FlatListPath instead).
func walkPath(c Cursor, names []string, allowList bool) (Cursor, *Problem) {
	cur := c
	for i, name := range names {
		if cur.IsNullable() {
			m, ok := cur.AsNullable().Value()
			if !ok {
				return nil, ProblemAt(cur.Context(), NullabilityViolation, []string{name}, "nullable resolution failed at %q", name)
			}
			if !m.Ok {
				return nil, ProblemAt(cur.Context(), NullabilityViolation, []string{name}, "absent value at %q", name)
			}
			cur = m.Cursor
		}
		if cur.IsList() && !allowList && i != len(names)-1 {
			return nil, ProblemAt(cur.Context(), TypeMismatch, []string{name}, "unexpected list at %q", name)
		}
		fr := cur.Field(name, "", nil)
		next, ok := fr.Value()
		if !ok {
			return nil, fr.Problems()[0]
		}
		cur = next
	}
	return cur, nil
}

func listWalk(cursors []Cursor, names []string) ([]Cursor, *Problem) {
	if len(names) == 0 {
		return cursors, nil
	}
	name := names[0]
	var next []Cursor
	for _, c := range cursors {
		cur := c
		if cur.IsNullable() {
			m, ok := cur.AsNullable().Value()
			if !ok {
				return nil, ProblemAt(cur.Context(), NullabilityViolation, []string{name}, "nullable resolution failed at %q", name)
			}
			if !m.Ok {
				continue
			}
			cur = m.Cursor
		}
		if cur.IsList() {
			lr := cur.AsList()
			els, ok := lr.Value()
			if !ok {
				return nil, lr.Problems()[0]
			}
			for _, el := range els {
				fr := el.Field(name, "", nil)
				fc, ok := fr.Value()
				if !ok {
					return nil, fr.Problems()[0]
				}
				next = append(next, fc)
			}
			continue
		}
		fr := cur.Field(name, "", nil)
		fc, ok := fr.Value()
		if !ok {
			return nil, fr.Problems()[0]
		}
		next = append(next, fc)
	}
	return listWalk(next, names[1:])
}
