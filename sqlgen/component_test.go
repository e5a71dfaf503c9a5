package sqlgen_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursorgraph/cursorql/engine"
	"github.com/cursorgraph/cursorql/model"
	"github.com/cursorgraph/cursorql/sqlgen"
)

// TestMovieRatingCrossesComponentBoundary routes a single query across
// two independent Mappings: model's Movie (the host) and sqlgen's
// RatingStore (the component), the way §4.3/§4.5 describe. "rating" is
// not a field model's Cursor knows about, so runSelect emits a
// DeferredJson targeting sqlgen's Subobject; Complete resolves it by
// running RatingStore's own RootRunner and completing its result
// against RatingStore's own (empty) Mapping, proving a Deferred can be
// fully resolved by a sub-mapping rather than just reported missing.
func TestMovieRatingCrossesComponentBoundary(t *testing.T) {
	schema := model.Schema()
	store := model.NewFixtureStore()
	ratings := sqlgen.NewRatingStore(nil) // no live DB: the movie has no rating row

	mapping := engine.MergeMappings(
		&engine.StaticMapping{},
		sqlgen.NewComponentMapping(schema.Types["Movie"], ratings),
	)
	ip := engine.NewInterpreter(schema, mapping, store.RootRunner(schema))

	query := &engine.Select{
		Name: "movie",
		Args: engine.Args{"id": "6a78...21"},
		Child: &engine.Group{Queries: []engine.Query{
			&engine.Select{Name: "title"},
			&engine.Select{Name: "rating", Child: &engine.Select{Name: "stars"}},
		}},
	}

	resp := engine.Assemble(context.Background(), ip, query)
	assert.Empty(t, resp.Errors, "completion should be total: %v", resp.Errors)

	got, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"data":{"movie":{"title":"Celine et Julie Vont en Bateau","rating":null}}}`,
		string(got))
}
