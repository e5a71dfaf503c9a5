package engine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Interpreter is the two-phase driver of §4.3: runRoot/runFields/runValue
// recurse over a Query against a Cursor, dispatching Object/Interface
// fields down to RunRootValue only at the very top (everything below the
// root walks the Cursor directly).
type Interpreter struct {
	Schema       *Schema
	Mapping      Mapping
	RunRootValue RootRunner
	Config       Config
}

// NewInterpreter builds an Interpreter with default Config (see
// NewConfig); set ip.Config directly afterward to override tunables.
func NewInterpreter(schema *Schema, mapping Mapping, runRoot RootRunner) *Interpreter {
	return &Interpreter{Schema: schema, Mapping: mapping, RunRootValue: runRoot, Config: NewConfig()}
}

// RunRoot shape-matches Select(fieldName, ...) or Rename(name,
// Select(...)), delegates to RunRootValue to obtain a ProtoJson, and
// wraps it as {fieldName: value} (or {name: value} when renamed).
func (ip *Interpreter) RunRoot(ctx context.Context, query Query) Result[ProtoJson] {
	fieldName, resultName, sel, _, ok := PossiblyRenamedSelect(query)
	if !ok {
		return Fail[ProtoJson](NewProblem(BadQuery, "top-level query must be a single field selection, got %s", Render(query)))
	}
	inner := ip.RunRootValue(ctx, fieldName, sel.Args, sel.Child)
	value, hasValue := inner.Value()
	if !hasValue {
		return Fail[ProtoJson](inner.Problems()...)
	}
	obj := FromFields([]ProtoField{{Name: resultName, Value: value}})
	return Warn(obj, inner.Problems()...)
}

// RunFields dispatches on (query, tpe) (§4.3), returning the ordered
// list of (resultName, ProtoJson) emissions produced by cursor.
func (ip *Interpreter) RunFields(ctx context.Context, query Query, tpe Type, cursor Cursor) Result[[]fieldResultPublic] {
	results, problems := ip.runFields(ctx, query, tpe, cursor)
	if len(results) == 0 && len(problems) > 0 {
		return Fail[[]fieldResultPublic](problems...)
	}
	return Warn(results, problems...)
}

// fieldResultPublic is the shape of a single field emission, as
// returned by RunFields.
type fieldResultPublic struct {
	Name  string
	Value ProtoJson
}

func (ip *Interpreter) runFields(ctx context.Context, query Query, tpe Type, cursor Cursor) ([]fieldResultPublic, []*Problem) {
	switch q := query.(type) {
	case *Select:
		if nt, isNullable := tpe.(*Nullable); isNullable {
			m, ok := cursor.AsNullable().Value()
			if !ok {
				return nil, cursor.AsNullable().Problems()
			}
			if !m.Ok {
				return []fieldResultPublic{{Name: q.ResultName(), Value: &PureJson{Value: nil}}}, nil
			}
			return ip.runFields(ctx, query, nt.Of, m.Cursor)
		}
		return ip.runSelect(ctx, q, tpe, cursor)

	case *Rename:
		inner, ok := q.Child.(*Select)
		if !ok {
			return nil, []*Problem{ProblemAt(cursor.Context(), BadQuery, nil, "Rename must wrap a Select, got %s", Render(q.Child))}
		}
		renamed := &Select{Name: inner.Name, Alias: q.Name, Args: inner.Args, Child: inner.Child}
		return ip.runFields(ctx, renamed, tpe, cursor)

	case *Group:
		// Siblings in a Group are independent: resolve them concurrently,
		// bounded by Config.MaxConcurrentSuspensions (0 means unbounded).
		perQueryResults := make([][]fieldResultPublic, len(q.Queries))
		perQueryProblems := make([][]*Problem, len(q.Queries))
		g, gctx := errgroup.WithContext(ctx)
		if ip.Config.MaxConcurrentSuspensions > 0 {
			g.SetLimit(ip.Config.MaxConcurrentSuspensions)
		}
		for i, sub := range q.Queries {
			i, sub := i, sub
			g.Go(func() error {
				perQueryResults[i], perQueryProblems[i] = ip.runFields(gctx, sub, tpe, cursor)
				return nil
			})
		}
		g.Wait()

		var results []fieldResultPublic
		var problems []*Problem
		for i := range q.Queries {
			results = append(results, perQueryResults[i]...)
			problems = append(problems, perQueryProblems[i]...)
		}
		return results, problems

	case *Narrow:
		if !cursor.NarrowsTo(q.Sub) {
			return nil, nil
		}
		nr := cursor.Narrow(q.Sub)
		narrowed, ok := nr.Value()
		if !ok {
			return nil, nr.Problems()
		}
		return ip.runFields(ctx, q.Child, q.Sub, narrowed)

	case *UntypedNarrow:
		return nil, []*Problem{ProblemAt(cursor.Context(), BadQuery, nil, "UntypedNarrow %q reached the interpreter unelaborated", q.Name)}

	case *Skip:
		emit := q.Cond
		if !q.Include {
			emit = !q.Cond
		}
		if !emit {
			return nil, nil
		}
		return ip.runFields(ctx, q.Child, tpe, cursor)

	case *Environment:
		return ip.runFields(ctx, q.Child, tpe, WithEnv(cursor, q.Env))

	case *Empty, *Skipped:
		return nil, nil

	case *Count:
		subResults, problems := ip.runFields(ctx, q.Child, tpe, cursor)
		if len(subResults) == 0 && len(problems) > 0 {
			return nil, problems
		}
		n := 0
		for _, r := range subResults {
			n += countTopLevel(r.Value)
		}
		return []fieldResultPublic{{Name: q.Name, Value: &PureJson{Value: n}}}, problems

	case *Wrap:
		subResults, problems := ip.runFields(ctx, q.Child, tpe, cursor)
		fields := make([]ProtoField, len(subResults))
		for i, r := range subResults {
			fields[i] = ProtoField{Name: r.Name, Value: r.Value}
		}
		return []fieldResultPublic{{Name: q.Name, Value: FromFields(fields)}}, problems

	case *Defer:
		join := q.Join
		if join == nil {
			join = IdentityJoin
		}
		jr := join(cursor, q.Child)
		subquery, ok := jr.Value()
		if !ok {
			return nil, jr.Problems()
		}
		name := deferName(subquery)
		return []fieldResultPublic{{
			Name:  name,
			Value: &DeferredJson{Cursor: cursor, Tpe: firstNonNil(q.RootTpe, tpe), Name: name, Query: subquery},
		}}, jr.Problems()

	case *Component:
		name := deferName(q.Child)
		join := q.Join
		if join == nil {
			join = IdentityJoin
		}
		jr := join(cursor, q.Child)
		subquery, ok := jr.Value()
		if !ok {
			return nil, jr.Problems()
		}
		return []fieldResultPublic{{
			Name: name,
			Value: &DeferredJson{
				Cursor: cursor, Tpe: tpe, Name: name, Query: subquery,
				TargetMapping: q.Mapping,
			},
		}}, jr.Problems()

	case *Introspect:
		if !ip.Config.AllowIntrospection {
			return nil, []*Problem{ProblemAt(cursor.Context(), SchemaValidation, nil, "introspection is disabled")}
		}
		return ip.runFields(ctx, q.Child, tpe, cursor)

	default:
		return nil, []*Problem{ProblemAt(cursor.Context(), BadQuery, nil, "unsupported query node in field position: %s", Render(query))}
	}
}

// runSelect implements the core (Select(n, args, child), t) dispatch
// rule of §4.3: defer to the mapping when the field is absent from the
// cursor, otherwise navigate and recurse via runValue.
func (ip *Interpreter) runSelect(ctx context.Context, sel *Select, tpe Type, cursor Cursor) ([]fieldResultPublic, []*Problem) {
	if !cursor.HasField(sel.Name) {
		// §9 Open Question, resolved: a Deferred hole is emitted so a
		// Mapping can still claim the field during completion; if no
		// Mapping's Subobject claims it, completion reports Deferral.
		return []fieldResultPublic{{
			Name:  sel.ResultName(),
			Value: &DeferredJson{Cursor: cursor, Tpe: tpe, Name: sel.Name, Query: sel.Child},
		}}, nil
	}

	fieldCursorResult := cursor.Field(sel.Name, sel.Alias, sel.Args)
	fieldCursor, ok := fieldCursorResult.Value()
	if !ok {
		return nil, fieldCursorResult.Problems()
	}

	resolved, err := ip.Schema.Resolve(fieldCursor.Context().Tpe)
	if err != nil {
		return nil, []*Problem{err.(*Problem)}
	}

	value := ip.runValue(ctx, sel.Child, resolved, fieldCursor)
	v, ok := value.Value()
	if !ok {
		return nil, value.Problems()
	}
	return []fieldResultPublic{{Name: sel.ResultName(), Value: v}}, value.Problems()
}

// RunValue dispatches on tpe (§4.3), producing a single ProtoJson value.
func (ip *Interpreter) RunValue(ctx context.Context, query Query, tpe Type, cursor Cursor) Result[ProtoJson] {
	return ip.runValue(ctx, query, tpe, cursor)
}

func (ip *Interpreter) runValue(ctx context.Context, query Query, tpe Type, cursor Cursor) Result[ProtoJson] {
	switch t := tpe.(type) {
	case *Nullable:
		if !cursor.IsNullable() {
			return ip.runValue(ctx, query, t.Of, cursor)
		}
		mr := cursor.AsNullable()
		m, ok := mr.Value()
		if !ok {
			return Fail[ProtoJson](mr.Problems()...)
		}
		if !m.Ok {
			return Warn[ProtoJson](&PureJson{Value: nil}, mr.Problems()...)
		}
		return ip.runValue(ctx, query, t.Of, m.Cursor)

	case *List:
		return ip.runListValue(ctx, query, t.Of, cursor)

	case *TypeRef:
		resolved, err := ip.Schema.Resolve(t)
		if err != nil {
			return Fail[ProtoJson](err.(*Problem))
		}
		return ip.runValue(ctx, query, resolved, cursor)

	case *Scalar, *Enum:
		lr := cursor.AsLeaf()
		v, ok := lr.Value()
		if !ok {
			return Fail[ProtoJson](lr.Problems()...)
		}
		return Warn[ProtoJson](&PureJson{Value: v}, lr.Problems()...)

	case *Object, *Interface:
		return ip.runObjectValue(ctx, query, tpe, cursor)

	default:
		return Fail[ProtoJson](ProblemAt(cursor.Context(), UnsupportedType, nil, "unsupported type kind: %T", tpe))
	}
}

func (ip *Interpreter) runObjectValue(ctx context.Context, query Query, tpe Type, cursor Cursor) Result[ProtoJson] {
	results, problems := ip.runFields(ctx, query, tpe, cursor)
	if len(results) == 0 && len(problems) > 0 {
		return Fail[ProtoJson](problems...)
	}
	fields := make([]ProtoField, len(results))
	for i, r := range results {
		fields[i] = ProtoField{Name: r.Name, Value: r.Value}
	}
	return Warn(FromFields(fields), problems...)
}

// runListValue applies Filter/OrderBy/Limit/Offset/Unique/GroupList
// transformations over a list-producing query, then maps runValue over
// each surviving element (§4.3 "Transformations applied to list-bearing
// children").
func (ip *Interpreter) runListValue(ctx context.Context, query Query, elemTpe Type, cursor Cursor) Result[ProtoJson] {
	switch q := query.(type) {
	case *Unique:
		return ip.runUnique(ctx, q.Child, elemTpe, cursor)

	case *Filter, *OrderBy, *Limit, *Offset:
		return ip.runSlice(ctx, query, elemTpe, cursor)

	case *GroupList:
		var elems []ProtoJson
		var problems []*Problem
		for _, sub := range q.Queries {
			r := ip.runValue(ctx, sub, elemTpe, cursor)
			v, ok := r.Value()
			problems = append(problems, r.Problems()...)
			if ok {
				elems = append(elems, v)
			}
		}
		return Warn(FromValues(elems), problems...)

	default:
		lr := cursor.AsList()
		elements, ok := lr.Value()
		if !ok {
			return Fail[ProtoJson](lr.Problems()...)
		}
		return ip.mapElements(ctx, query, elemTpe, elements)
	}
}

func (ip *Interpreter) runSlice(ctx context.Context, query Query, elemTpe Type, cursor Cursor) Result[ProtoJson] {
	shape := MatchFilterOrderByLimit(query)

	lr := cursor.AsList()
	elements, ok := lr.Value()
	if !ok {
		return Fail[ProtoJson](lr.Problems()...)
	}
	problems := append([]*Problem{}, lr.Problems()...)

	if shape.HasFilter {
		filtered := elements[:0:0]
		for _, el := range elements {
			if shape.Filter(el) {
				filtered = append(filtered, el)
			}
		}
		elements = filtered
	}

	if len(shape.OrderBy) > 0 {
		elements = orderElements(elements, shape.OrderBy, ip.Config.DefaultNullsOrder)
	}

	if shape.HasOffset {
		if shape.Offset < 0 {
			return Fail[ProtoJson](ProblemAt(cursor.Context(), BadQuery, nil, "negative offset: %d", shape.Offset))
		}
		if shape.Offset >= len(elements) {
			elements = nil
		} else {
			elements = elements[shape.Offset:]
		}
	}

	if shape.HasLimit {
		if shape.Limit < 0 {
			return Fail[ProtoJson](ProblemAt(cursor.Context(), BadQuery, nil, "negative limit: %d", shape.Limit))
		}
		if shape.Limit < len(elements) {
			elements = elements[:shape.Limit]
		}
	}

	result := ip.mapElements(ctx, shape.Child, elemTpe, elements)
	v, ok := result.Value()
	if !ok {
		return Fail[ProtoJson](append(problems, result.Problems()...)...)
	}
	return Warn(v, append(problems, result.Problems()...)...)
}

func (ip *Interpreter) runUnique(ctx context.Context, child Query, elemTpe Type, cursor Cursor) Result[ProtoJson] {
	lr := cursor.AsList()
	elements, ok := lr.Value()
	if !ok {
		return Fail[ProtoJson](lr.Problems()...)
	}
	switch len(elements) {
	case 0:
		return Warn[ProtoJson](&PureJson{Value: nil}, lr.Problems()...)
	case 1:
		r := ip.runValue(ctx, child, elemTpe, elements[0])
		v, ok := r.Value()
		if !ok {
			return Fail[ProtoJson](r.Problems()...)
		}
		return Warn(v, r.Problems()...)
	default:
		return Fail[ProtoJson](ProblemAt(cursor.Context(), TooManyResults, nil, "Unique expected at most one result, got %d", len(elements)))
	}
}

func (ip *Interpreter) mapElements(ctx context.Context, query Query, elemTpe Type, elements []Cursor) Result[ProtoJson] {
	values := make([]ProtoJson, len(elements))
	var problems []*Problem
	for i, el := range elements {
		r := ip.runValue(ctx, query, elemTpe, el)
		v, ok := r.Value()
		problems = append(problems, r.Problems()...)
		if !ok {
			return Fail[ProtoJson](problems...)
		}
		values[i] = v
	}
	return Warn(FromValues(values), problems...)
}

// orderElements stable-sorts by lexicographic comparison over sels,
// satisfying §8 law 8 (OrderBy stability) because sort.SliceStable never
// reorders equal elements.
func orderElements(elements []Cursor, sels []OrderSelection, defaultNulls NullsOrder) []Cursor {
	out := append([]Cursor{}, elements...)
	sort.SliceStable(out, func(i, j int) bool {
		for _, sel := range sels {
			cmp := compareByPath(out[i], out[j], sel, defaultNulls)
			if cmp != 0 {
				if sel.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		return false
	})
	return out
}

// compareByPath compares two cursors by the leaf value reached along
// sel.Path, honoring sel.Nulls for missing values. A selection that
// leaves Nulls unspecified falls back to defaultNulls (the
// Interpreter's Config.DefaultNullsOrder), which itself falls back to
// NullsLast if never set.
func compareByPath(a, b Cursor, sel OrderSelection, defaultNulls NullsOrder) int {
	av, aok := leafAt(a, sel.Path)
	bv, bok := leafAt(b, sel.Path)
	if !aok && !bok {
		return 0
	}
	nulls := sel.Nulls
	if nulls == NullsUnspecified {
		nulls = defaultNulls
	}
	if nulls == NullsUnspecified {
		nulls = NullsLast
	}
	missing := 1
	if nulls == NullsFirst {
		missing = -1
	}
	if sel.Desc {
		// orderElements inverts cmp for descending terms; pre-invert so
		// nulls placement does not depend on direction.
		missing = -missing
	}
	if !aok {
		return missing
	}
	if !bok {
		return -missing
	}
	return compareJSON(av, bv)
}

func leafAt(c Cursor, path []string) (Json, bool) {
	r := Path(c, path)
	target, ok := r.Value()
	if !ok {
		return nil, false
	}
	if target.IsNullable() {
		m, ok := target.AsNullable().Value()
		if !ok || !m.Ok {
			return nil, false
		}
		target = m.Cursor
	}
	lr := target.AsLeaf()
	v, ok := lr.Value()
	if !ok {
		return nil, false
	}
	return v, true
}

func compareJSON(a, b Json) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case int:
		bv, _ := b.(int)
		return av - bv
	case int64:
		bv, _ := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv, _ := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func countTopLevel(v ProtoJson) int {
	switch t := v.(type) {
	case *ProtoArray:
		return len(t.Elements)
	case *PureJson:
		if list, ok := t.Value.([]Json); ok {
			return len(list)
		}
		return 0
	default:
		return 0
	}
}

func deferName(q Query) string {
	fieldName, resultName, _, _, ok := PossiblyRenamedSelect(q)
	if !ok {
		return ""
	}
	if resultName != "" {
		return resultName
	}
	return fieldName
}

func firstNonNil(t Type, fallback Type) Type {
	if t != nil {
		return t
	}
	return fallback
}
