package sqlgen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cursorgraph/cursorql/engine"
)

// rowCursor is unexported, so its field-extraction behavior (the piece
// NewComponentMapping's RootRunner relies on once a row comes back from
// the database) is covered here rather than from a RatingStore with a
// live *sql.DB.
func TestRowCursorFieldAndLeaf(t *testing.T) {
	rating := Rating{MovieID: "6a78...21", Stars: 4}
	root := &rowCursor{ctx: engine.RootContext(RatingSchema().QueryType), value: reflect.ValueOf(rating)}

	assert.True(t, root.HasField("stars"))
	assert.True(t, root.HasField("movieId"))
	assert.False(t, root.HasField("nope"))

	starsCursor, ok := root.Field("stars", "", nil).Value()
	assert.True(t, ok)
	stars, ok := starsCursor.AsLeaf().Value()
	assert.True(t, ok)
	assert.Equal(t, 4, stars)

	_, ok = root.Field("nope", "", nil).Value()
	assert.False(t, ok)
}
