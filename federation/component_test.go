package federation_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursorgraph/cursorql/engine"
	"github.com/cursorgraph/cursorql/federation"
)

// TestFooCrossesFederationBoundary routes a single query across two
// independent Mappings entirely within this package: LocalSchema's Foo
// (the host) and the Service's federated Bar (the component), the way
// §4.3/§4.5 describe. "relatedBar" is not a field fooCursor knows
// about, so runSelect emits a DeferredJson targeting the Service's
// Subobject; Complete resolves it by carrying Foo's Name forward as a
// federationKey, running the Service's own RootRunner, and completing
// the result against the Service's own (empty) Mapping.
func TestFooCrossesFederationBoundary(t *testing.T) {
	schema := federation.LocalSchema()
	service := federation.NewDemoService()

	mapping := engine.MergeMappings(
		&engine.StaticMapping{},
		federation.NewComponentMapping(schema.Types["Foo"], service),
	)
	ip := engine.NewInterpreter(schema, mapping, service.LocalRootRunner(schema))

	query := &engine.Select{
		Name: "foo",
		Child: &engine.Group{Queries: []engine.Query{
			&engine.Select{Name: "name"},
			&engine.Select{Name: "relatedBar", Child: &engine.Select{Name: "id"}},
		}},
	}

	resp := engine.Assemble(context.Background(), ip, query)
	assert.Empty(t, resp.Errors, "completion should be total: %v", resp.Errors)

	got, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"data":{"foo":{"name":"jimbob","relatedBar":{"id":1}}}}`,
		string(got))
}

// TestFooFederationKeyMiss covers the no-match branch: a federation key
// absent from BarsByKey completes to a null relatedBar rather than an
// error, the same total-completion guarantee sqlgen's component test
// exercises for a missing SQL row.
func TestFooFederationKeyMiss(t *testing.T) {
	schema := federation.LocalSchema()
	service := &federation.Service{
		Foos:      []*federation.Foo{{Name: "nobody"}},
		BarsByKey: map[string]*federation.Bar{},
	}

	mapping := engine.MergeMappings(
		&engine.StaticMapping{},
		federation.NewComponentMapping(schema.Types["Foo"], service),
	)
	ip := engine.NewInterpreter(schema, mapping, service.LocalRootRunner(schema))

	query := &engine.Select{
		Name:  "foo",
		Child: &engine.Select{Name: "relatedBar", Child: &engine.Select{Name: "id"}},
	}

	resp := engine.Assemble(context.Background(), ip, query)
	assert.Empty(t, resp.Errors, "completion should be total: %v", resp.Errors)

	got, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"foo":{"relatedBar":null}}}`, string(got))
}
