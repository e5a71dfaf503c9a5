package engine

// Merge implements ~ (§3/§8 law 1): it is associative with identity
// Empty, and flattens Group boundaries — Group(Group xs, ys) collapses
// to Group(xs ++ ys). It does not deduplicate same-named selects; that
// is MergeQueries's job.
func Merge(a, b Query) Query {
	flat := flattenOnce([]Query{a, b})
	switch len(flat) {
	case 0:
		return &Empty{}
	case 1:
		return flat[0]
	default:
		return &Group{Queries: flat}
	}
}

// flattenOnce drops Empty nodes and splices one level of nested Group
// children into the result.
func flattenOnce(qs []Query) []Query {
	var out []Query
	for _, q := range qs {
		switch v := q.(type) {
		case nil:
			continue
		case *Empty:
			continue
		case *Group:
			out = append(out, v.Queries...)
		default:
			out = append(out, q)
		}
	}
	return out
}

// PossiblyRenamedSelect recognizes the canonical emitted-field pattern
// (§4.2): either Rename(n, Select(...)) or a bare Select (whose own
// Alias, possibly empty, already determines its result name). It
// returns the field name being selected, the result name it will be
// emitted under, the Select node itself, and whether an outer Rename
// wrapper was present.
func PossiblyRenamedSelect(q Query) (fieldName, resultName string, sel *Select, renamed bool, ok bool) {
	switch v := q.(type) {
	case *Rename:
		if inner, ok2 := v.Child.(*Select); ok2 {
			return inner.Name, v.Name, inner, true, true
		}
		return "", "", nil, false, false
	case *Select:
		return v.Name, v.ResultName(), v, false, true
	default:
		return "", "", nil, false, false
	}
}

type mergeGroup struct {
	fieldName  string
	resultName string
	renamed    bool
	args       Args
	children   []Query
}

// MergeQueries is the full normalization pass (§4.2): drop Empty,
// flatten one level of Group, partition selects from everything else,
// group selects by (fieldName, resultName), merge each group's children
// recursively, and preserve the outermost Rename. Argument-merging
// policy (an Open Question in §9): when two copies of the same
// (field, result) pair carry differing args, the first non-empty arg
// list is kept — the permissive choice, since rejecting would make
// ordinary query merging (e.g. two aliases of a field fetched via
// different selection paths that happen to collide) fail unnecessarily.
func MergeQueries(qs []Query) Query {
	flat := flattenOnce(qs)

	var others []Query
	var order []string
	groups := map[string]*mergeGroup{}

	for _, q := range flat {
		fieldName, resultName, sel, renamed, ok := PossiblyRenamedSelect(q)
		if !ok {
			others = append(others, q)
			continue
		}
		key := fieldName + "\x00" + resultName
		g, exists := groups[key]
		if !exists {
			g = &mergeGroup{fieldName: fieldName, resultName: resultName}
			groups[key] = g
			order = append(order, key)
		}
		if renamed {
			g.renamed = true
		}
		if len(sel.Args) > 0 && len(g.args) == 0 {
			g.args = sel.Args
		}
		g.children = append(g.children, sel.Child)
	}

	merged := make([]Query, 0, len(order))
	for _, key := range order {
		g := groups[key]
		child := MergeQueries(g.children)
		if g.renamed {
			merged = append(merged, &Rename{
				Name:  g.resultName,
				Child: &Select{Name: g.fieldName, Args: g.args, Child: child},
			})
			continue
		}
		alias := ""
		if g.resultName != g.fieldName {
			alias = g.resultName
		}
		merged = append(merged, &Select{Name: g.fieldName, Alias: alias, Args: g.args, Child: child})
	}

	all := append(others, merged...)
	switch len(all) {
	case 0:
		return &Empty{}
	case 1:
		return all[0]
	default:
		return &Group{Queries: all}
	}
}

// MkPathQuery produces a tree of Selects covering the union of paths
// (§4.2): one-element paths become leaf selects, multi-element paths
// are grouped by head and recursed on their tails.
func MkPathQuery(paths [][]string) Query {
	var leaves []Query
	var order []string
	tailsByHead := map[string][][]string{}

	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if len(p) == 1 {
			leaves = append(leaves, &Select{Name: p[0], Child: &Empty{}})
			continue
		}
		head := p[0]
		if _, seen := tailsByHead[head]; !seen {
			order = append(order, head)
		}
		tailsByHead[head] = append(tailsByHead[head], p[1:])
	}

	qs := append([]Query{}, leaves...)
	for _, head := range order {
		qs = append(qs, &Select{Name: head, Child: MkPathQuery(tailsByHead[head])})
	}
	return MergeQueries(qs)
}

// FilterOrderByLimitShape is the normalized extractor result of
// Limit(Offset(OrderBy(Filter(pred, q)))), any layer optional, that lets
// a back-end mapping recognize slice-plus-predicate shapes and push them
// down (e.g. into a SQL WHERE/ORDER BY/LIMIT clause).
type FilterOrderByLimitShape struct {
	Filter  Predicate
	HasFilter bool
	OrderBy []OrderSelection
	Offset  int
	HasOffset bool
	Limit   int
	HasLimit bool
	Child   Query
}

// MatchFilterOrderByLimit peels off, in order, an optional Limit, an
// optional Offset, an optional OrderBy, and an optional Filter, in
// exactly that nesting order (the shape the grammar above names).
func MatchFilterOrderByLimit(q Query) FilterOrderByLimitShape {
	var shape FilterOrderByLimitShape
	cur := q
	if l, ok := cur.(*Limit); ok {
		shape.Limit, shape.HasLimit = l.N, true
		cur = l.Child
	}
	if o, ok := cur.(*Offset); ok {
		shape.Offset, shape.HasOffset = o.N, true
		cur = o.Child
	}
	if ob, ok := cur.(*OrderBy); ok {
		shape.OrderBy = ob.Selections
		cur = ob.Child
	}
	if f, ok := cur.(*Filter); ok {
		shape.Filter, shape.HasFilter = f.Pred, true
		cur = f.Child
	}
	shape.Child = cur
	return shape
}
