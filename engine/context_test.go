package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scalarSchema(name string) *Object {
	return &Object{
		Name: "Query",
		Fields: map[string]*FieldDef{
			name: {Name: name, Type: &Scalar{Name: "String"}},
		},
	}
}

// Context invariant (§3): len(Path) == len(ResultPath) at every step.
func TestContextPathLengthInvariant(t *testing.T) {
	root := RootContext(scalarSchema("title"))
	assert.Len(t, root.Path, 0)
	assert.Len(t, root.ResultPath, 0)

	next, ok := root.ForField("title", "aliasedTitle")
	assert.True(t, ok)
	assert.Len(t, next.Path, len(next.ResultPath))
	assert.Equal(t, []string{"title"}, next.Path)
	assert.Equal(t, []string{"aliasedTitle"}, next.ResultPath)
}

// ForField fails closed on an undeclared field rather than synthesizing one.
func TestContextForFieldUnknown(t *testing.T) {
	root := RootContext(scalarSchema("title"))
	_, ok := root.ForField("nope", "")
	assert.False(t, ok)
}

// ForFieldOrAttribute falls back to a synthetic attribute type so
// mapping-only pseudo-fields still carry a well-formed Context.
func TestContextForFieldOrAttributeFallsBack(t *testing.T) {
	root := RootContext(scalarSchema("title"))
	next := root.ForFieldOrAttribute("computed", "")
	assert.Len(t, next.Path, len(next.ResultPath))
	assert.Equal(t, []string{"computed"}, next.Path)
}

// ForPath folds ForField and fails as soon as one segment is undeclared.
func TestContextForPath(t *testing.T) {
	inner := &Object{
		Name: "Movie",
		Fields: map[string]*FieldDef{
			"title": {Name: "title", Type: &Scalar{Name: "String"}},
		},
	}
	outer := &Object{
		Name: "Query",
		Fields: map[string]*FieldDef{
			"movie": {Name: "movie", Type: inner},
		},
	}
	root := RootContext(outer)

	got, ok := root.ForPath([]string{"movie", "title"})
	assert.True(t, ok)
	assert.Equal(t, []string{"title", "movie"}, got.Path)

	_, ok = root.ForPath([]string{"movie", "nope"})
	assert.False(t, ok)
}
