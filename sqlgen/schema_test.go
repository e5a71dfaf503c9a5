package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRow struct {
	MovieID string `sql:"movie_id,primary"`
	Stars   int
}

func TestRegisterTypeUsesTagThenSnakeCase(t *testing.T) {
	s := NewSchema()
	require := assert.New(t)
	require.NoError(s.RegisterType("samples", sampleRow{}))

	table := s.ByName["samples"]
	require.Len(table.Columns, 2)
	require.Equal("movie_id", table.Columns[0].Name)
	require.Equal("MovieID", table.Columns[0].Field)
	require.Equal("stars", table.Columns[1].Name)
	require.Equal("Stars", table.Columns[1].Field)
}

func TestRegisterTypeRejectsNonStruct(t *testing.T) {
	s := NewSchema()
	assert.Error(t, s.RegisterType("bad", 1))
}

func TestMakeSnake(t *testing.T) {
	assert.Equal(t, "movie_id", makeSnake("MovieID"))
	assert.Equal(t, "stars", makeSnake("Stars"))
}

// makeWhere builds deterministic SQL regardless of map iteration order.
func TestMakeWhereDeterministic(t *testing.T) {
	clause, args := makeWhere(Filter{"b": 2, "a": 1})
	assert.Equal(t, "a = ? AND b = ?", clause)
	assert.Equal(t, []interface{}{1, 2}, args)
}

func TestMakeWhereEmpty(t *testing.T) {
	clause, args := makeWhere(nil)
	assert.Equal(t, "", clause)
	assert.Nil(t, args)
}
