package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// rankCursor is a minimal single-field Cursor fixture for exercising
// orderElements/compareByPath directly, the way normalize_test.go tests
// the rest of the query algebra without a full Mapping/Interpreter.
type rankCursor struct {
	ctx   Context
	score *int
	leaf  bool
}

func (c *rankCursor) Context() Context { return c.ctx }
func (c *rankCursor) Focus() interface{} { return c.score }
func (c *rankCursor) Parent() (Cursor, bool) { return nil, false }
func (c *rankCursor) Env() Env { return Env{} }
func (c *rankCursor) IsLeaf() bool { return c.leaf }
func (c *rankCursor) IsList() bool { return false }
func (c *rankCursor) IsNullable() bool { return false }
func (c *rankCursor) IsNull() bool { return c.score == nil }
func (c *rankCursor) HasField(name string) bool {
	return !c.leaf && name == "score" && c.score != nil
}
func (c *rankCursor) NarrowsTo(sub Type) bool { return false }

func (c *rankCursor) AsLeaf() Result[Json] {
	if !c.leaf || c.score == nil {
		return Fail[Json](ProblemAt(c.ctx, TypeMismatch, nil, "not a leaf"))
	}
	return Succeed[Json](*c.score)
}

func (c *rankCursor) AsList() Result[[]Cursor] {
	return Fail[[]Cursor](ProblemAt(c.ctx, TypeMismatch, nil, "not a list"))
}

func (c *rankCursor) AsNullable() Result[Maybe] {
	return Fail[Maybe](ProblemAt(c.ctx, TypeMismatch, nil, "not nullable"))
}

func (c *rankCursor) Narrow(sub Type) Result[Cursor] {
	return Fail[Cursor](ProblemAt(c.ctx, NarrowingFailed, nil, "no subtypes"))
}

func (c *rankCursor) Field(name, alias string, args map[string]interface{}) Result[Cursor] {
	if c.leaf || name != "score" || c.score == nil {
		return Fail[Cursor](FieldNotFoundProblem(c, name))
	}
	return Succeed[Cursor](&rankCursor{ctx: c.ctx, score: c.score, leaf: true})
}

func ptr(n int) *int { return &n }

func rankElements(scores ...*int) []Cursor {
	ctx := RootContext(&Scalar{Name: "Rank"})
	out := make([]Cursor, len(scores))
	for i, s := range scores {
		out[i] = &rankCursor{ctx: ctx, score: s}
	}
	return out
}

func scoresOf(t *testing.T, elements []Cursor) []interface{} {
	t.Helper()
	out := make([]interface{}, len(elements))
	for i, el := range elements {
		v, ok := el.Field("score", "", nil).Value()
		if !ok {
			out[i] = nil
			continue
		}
		leaf, _ := v.AsLeaf().Value()
		out[i] = leaf
	}
	return out
}

// TestOrderElementsUnspecifiedNullsFallsBackToConfigDefault exercises
// the case DESIGN.md used to flag as dead: an OrderSelection that never
// sets Nulls explicitly sorts missing values according to whatever
// default the caller passes in, not a hardcoded NullsLast.
func TestOrderElementsUnspecifiedNullsFallsBackToConfigDefault(t *testing.T) {
	sel := []OrderSelection{{Path: []string{"score"}}}
	elements := rankElements(ptr(2), nil, ptr(1))

	last := orderElements(elements, sel, NullsLast)
	assert.Equal(t, []interface{}{1, 2, nil}, scoresOf(t, last))

	first := orderElements(elements, sel, NullsFirst)
	assert.Equal(t, []interface{}{nil, 1, 2}, scoresOf(t, first))
}

// TestOrderElementsExplicitNullsOverridesConfigDefault confirms an
// explicit per-selection Nulls wins over whatever default is in play.
func TestOrderElementsExplicitNullsOverridesConfigDefault(t *testing.T) {
	sel := []OrderSelection{{Path: []string{"score"}, Nulls: NullsFirst}}
	elements := rankElements(ptr(2), nil, ptr(1))

	out := orderElements(elements, sel, NullsLast)
	got := scoresOf(t, out)
	if len(got) != 3 || got[0] != nil {
		t.Fatalf("explicit NullsFirst should win over NullsLast default, got %v", got)
	}
}
