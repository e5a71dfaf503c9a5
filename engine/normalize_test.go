package engine

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"
)

func sel(name string, child Query) *Select {
	if child == nil {
		child = &Empty{}
	}
	return &Select{Name: name, Child: child}
}

// §8 law 1: Merge(Empty, x) == x == Merge(x, Empty).
func TestMergeIdentity(t *testing.T) {
	x := sel("title", nil)
	assert.Equal(t, x, Merge(&Empty{}, x))
	assert.Equal(t, x, Merge(x, &Empty{}))
}

// §8 law 1: Merge is associative up to the flattened Group shape it
// produces — Merge(Merge(a,b),c) and Merge(a,Merge(b,c)) normalize to
// the same flat Group of leaves.
func TestMergeAssociative(t *testing.T) {
	a := sel("a", nil)
	b := sel("b", nil)
	c := sel("c", nil)

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	if diff := pretty.Compare(left, right); diff != "" {
		t.Errorf("Merge associativity violated: %s", diff)
	}
}

// Merge of two distinct selects is a flat Group, not nested.
func TestMergeFlattensGroups(t *testing.T) {
	a := sel("a", nil)
	b := sel("b", nil)
	c := sel("c", nil)

	merged := Merge(Merge(a, b), c)
	g, ok := merged.(*Group)
	if !ok {
		t.Fatalf("expected *Group, got %T", merged)
	}
	assert.Len(t, g.Queries, 3)
}

// §8 law 2: MergeQueries is idempotent — merging an already-merged
// result again yields the same tree.
func TestMergeQueriesIdempotent(t *testing.T) {
	qs := []Query{sel("a", nil), sel("b", nil), sel("a", nil)}
	once := MergeQueries(qs)
	twice := MergeQueries([]Query{once})

	if diff := pretty.Compare(once, twice); diff != "" {
		t.Errorf("MergeQueries not idempotent: %s", diff)
	}
}

// Two Selects on the same field/result name merge into one Select whose
// Child is the merge of both children, rather than being duplicated.
func TestMergeQueriesDedupesSameField(t *testing.T) {
	qs := []Query{
		sel("movie", sel("title", nil)),
		sel("movie", sel("id", nil)),
	}
	merged := MergeQueries(qs)

	s, ok := merged.(*Select)
	if !ok {
		t.Fatalf("expected a single *Select, got %T (%s)", merged, Render(merged))
	}
	assert.Equal(t, "movie", s.Name)

	g, ok := s.Child.(*Group)
	if !ok {
		t.Fatalf("expected merged child to be a *Group, got %T", s.Child)
	}
	assert.Len(t, g.Queries, 2)
}

// MergeQueries preserves an outer Rename (alias) across the merge.
func TestMergeQueriesPreservesRename(t *testing.T) {
	qs := []Query{
		&Rename{Name: "m", Child: sel("movie", sel("title", nil))},
		&Rename{Name: "m", Child: sel("movie", sel("id", nil))},
	}
	merged := MergeQueries(qs)

	r, ok := merged.(*Rename)
	if !ok {
		t.Fatalf("expected *Rename, got %T (%s)", merged, Render(merged))
	}
	assert.Equal(t, "m", r.Name)
}

// Open Question (permissive arg-merge policy, DESIGN.md): when two
// copies of a field carry different arg maps, the first non-empty one
// wins rather than the query being rejected.
func TestMergeQueriesKeepsFirstNonEmptyArgs(t *testing.T) {
	qs := []Query{
		&Select{Name: "movie", Args: Args{"id": "1"}, Child: &Empty{}},
		&Select{Name: "movie", Args: Args{"id": "2"}, Child: &Empty{}},
	}
	merged := MergeQueries(qs)
	s, ok := merged.(*Select)
	if !ok {
		t.Fatalf("expected *Select, got %T", merged)
	}
	assert.Equal(t, "1", s.Args["id"])
}

// MergeQueries([]) and Merge of two Empties both collapse to Empty,
// which downstream normalization treats as "nothing to select."
func TestMergeQueriesEmptyIsEmpty(t *testing.T) {
	assert.IsType(t, &Empty{}, MergeQueries(nil))
	assert.IsType(t, &Empty{}, Merge(&Empty{}, &Empty{}))
}

// MkPathQuery covers the union of paths, merging shared prefixes.
func TestMkPathQueryMergesSharedPrefix(t *testing.T) {
	q := MkPathQuery([][]string{{"movie", "title"}, {"movie", "id"}, {"foo"}})

	g, ok := q.(*Group)
	if !ok {
		t.Fatalf("expected *Group at the root, got %T (%s)", q, Render(q))
	}
	assert.Len(t, g.Queries, 2)

	var movie *Select
	for _, sub := range g.Queries {
		if s, ok := sub.(*Select); ok && s.Name == "movie" {
			movie = s
		}
	}
	if movie == nil {
		t.Fatal("expected a movie selection")
	}
	childGroup, ok := movie.Child.(*Group)
	if !ok {
		t.Fatalf("expected movie's children merged into a *Group, got %T", movie.Child)
	}
	assert.Len(t, childGroup.Queries, 2)
}

// MatchFilterOrderByLimit peels Limit/Offset/OrderBy/Filter in that
// fixed nesting order and reports which layers were present.
func TestMatchFilterOrderByLimit(t *testing.T) {
	inner := sel("title", nil)
	pred := func(Cursor) bool { return true }
	q := &Limit{N: 10, Child: &Offset{N: 5, Child: &OrderBy{
		Selections: []OrderSelection{{Path: []string{"title"}}},
		Child:      &Filter{Pred: pred, Child: inner},
	}}}

	shape := MatchFilterOrderByLimit(q)
	assert.True(t, shape.HasLimit)
	assert.Equal(t, 10, shape.Limit)
	assert.True(t, shape.HasOffset)
	assert.Equal(t, 5, shape.Offset)
	assert.Len(t, shape.OrderBy, 1)
	assert.True(t, shape.HasFilter)
	assert.Equal(t, inner, shape.Child)
}

// Any subset of layers may be absent; the shape only reports what it saw.
func TestMatchFilterOrderByLimitPartial(t *testing.T) {
	inner := sel("title", nil)
	shape := MatchFilterOrderByLimit(inner)
	assert.False(t, shape.HasLimit)
	assert.False(t, shape.HasOffset)
	assert.False(t, shape.HasFilter)
	assert.Nil(t, shape.OrderBy)
	assert.Equal(t, inner, shape.Child)
}
