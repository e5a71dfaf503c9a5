// This file turns the federation boundary concept (a field resolved by
// another service, keyed by a value carried over from the parent) into
// an engine.Component/Mapping pair: the crossing stays in-process and
// the "other service" is simply another engine.Mapping, reached via a
// Subobject's Join, with the two schemas stitched together by a
// federation key.
package federation

import (
	"context"

	"github.com/cursorgraph/cursorql/engine"
)

// Foo and Bar are the federation fixture types: Foo carries a
// federation key (its Name) that Bar is looked up by.
type Foo struct {
	Name string `graphql:"name"`
}

type Bar struct {
	ID int64 `graphql:"id"`
}

// Service holds the data the federated component resolves: a fixed set
// of Foo values and the Bars reachable by their federation keys.
type Service struct {
	Foos      []*Foo
	BarsByKey map[string]*Bar
}

// NewDemoService builds the demo fixture: one Foo named "jimbob" and its
// corresponding Bar.
func NewDemoService() *Service {
	return &Service{
		Foos:      []*Foo{{Name: "jimbob"}},
		BarsByKey: map[string]*Bar{"jimbob": {ID: 1}},
	}
}

// ComponentSchema describes the federated Bar type resolvable from this
// service: Bar { id }.
func ComponentSchema() *engine.Schema {
	barTpe := &engine.Object{
		Name:   "Bar",
		Fields: map[string]*engine.FieldDef{"id": {Name: "id", Type: &engine.Scalar{Name: "Int"}}},
	}
	return &engine.Schema{Types: map[string]engine.Type{"Bar": barTpe}, QueryType: barTpe}
}

// barCursor is a leaf-only Cursor over a resolved Bar; the federated
// service never needs the full reflective structCursor machinery of the
// model package because its schema surface is a single flat object.
type barCursor struct {
	ctx   engine.Context
	bar   *Bar
	field string
}

func (c *barCursor) Context() engine.Context { return c.ctx }
func (c *barCursor) Focus() interface{} { return c.bar }
func (c *barCursor) Parent() (engine.Cursor, bool) { return nil, false }
func (c *barCursor) Env() engine.Env { return engine.Env{} }
func (c *barCursor) IsLeaf() bool { return c.field != "" }
func (c *barCursor) IsList() bool { return false }
func (c *barCursor) IsNullable() bool { return false }
func (c *barCursor) IsNull() bool { return c.bar == nil }
func (c *barCursor) HasField(name string) bool { return c.field == "" && name == "id" }
func (c *barCursor) NarrowsTo(sub engine.Type) bool { return false }

func (c *barCursor) AsLeaf() engine.Result[engine.Json] {
	if c.field != "id" {
		return engine.Fail[engine.Json](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a leaf"))
	}
	return engine.Succeed[engine.Json](c.bar.ID)
}

func (c *barCursor) AsList() engine.Result[[]engine.Cursor] {
	return engine.Fail[[]engine.Cursor](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a list"))
}

func (c *barCursor) AsNullable() engine.Result[engine.Maybe] {
	return engine.Fail[engine.Maybe](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not nullable"))
}

func (c *barCursor) Narrow(sub engine.Type) engine.Result[engine.Cursor] {
	return engine.Fail[engine.Cursor](engine.ProblemAt(c.ctx, engine.NarrowingFailed, nil, "Bar narrows to nothing"))
}

func (c *barCursor) Field(name, alias string, args map[string]interface{}) engine.Result[engine.Cursor] {
	if name != "id" {
		return engine.Fail[engine.Cursor](engine.FieldNotFoundProblem(c, name))
	}
	return engine.Succeed[engine.Cursor](&barCursor{
		ctx:   c.ctx.ForFieldOrAttribute(name, alias),
		bar:   c.bar,
		field: name,
	})
}

// RootRunner is the federated component's runRootValue (§4.3/§4.5): given
// the federation key carried through by Component's Join, it resolves
// the matching Bar and runs the requested child selection against it.
func (s *Service) RootRunner() engine.RootRunner {
	schema := ComponentSchema()
	ip := engine.NewInterpreter(schema, &engine.StaticMapping{}, nil)
	return func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
		key, _ := args["federationKey"].(string)
		bar, ok := s.BarsByKey[key]
		if !ok {
			return engine.Succeed[engine.ProtoJson](&engine.PureJson{Value: nil})
		}
		cursor := &barCursor{ctx: engine.RootContext(schema.QueryType), bar: bar}
		return ip.RunValue(ctx, child, schema.QueryType, cursor)
	}
}

// Join adapts a Foo cursor into the federated Bar subquery, carrying the
// Foo's Name forward as the lookup key — the in-process analogue of a
// federationKey handoff between services.
func Join(cursor engine.Cursor, child engine.Query) engine.Result[engine.Query] {
	foo, ok := engine.As[*Foo](cursor)
	if !ok {
		return engine.Fail[engine.Query](engine.ProblemAt(cursor.Context(), engine.TypeMismatch, nil, "join requires a *Foo cursor"))
	}
	return engine.Succeed[engine.Query](&engine.Select{
		Name:  "relatedBar",
		Args:  engine.Args{"federationKey": foo.Name},
		Child: child,
	})
}

// LocalSchema describes the host side of the federation boundary as its
// own self-contained schema: Query { foo: Foo }, Foo { name }. Unlike
// model's Schema, it carries no FieldDef for "relatedBar" — that field
// is resolved entirely through NewComponentMapping's Subobject, the
// same way sqlgen/component.go's "rating" is absent from the host
// schema it attaches to.
func LocalSchema() *engine.Schema {
	fooTpe := &engine.Object{
		Name:   "Foo",
		Fields: map[string]*engine.FieldDef{"name": {Name: "name", Type: &engine.Scalar{Name: "String"}}},
	}
	queryTpe := &engine.Object{
		Name:   "Query",
		Fields: map[string]*engine.FieldDef{"foo": {Name: "foo", Type: fooTpe}},
	}
	return &engine.Schema{
		QueryType: queryTpe,
		Types:     map[string]engine.Type{"Query": queryTpe, "Foo": fooTpe},
	}
}

// fooCursor is a leaf-only Cursor over a Foo value. "relatedBar" is
// deliberately not among its fields, so runSelect defers it to the
// Component boundary that Join (above) and NewComponentMapping (below)
// implement.
type fooCursor struct {
	ctx   engine.Context
	foo   *Foo
	field string
}

func (c *fooCursor) Context() engine.Context { return c.ctx }
func (c *fooCursor) Focus() interface{} { return c.foo }
func (c *fooCursor) Parent() (engine.Cursor, bool) { return nil, false }
func (c *fooCursor) Env() engine.Env { return engine.Env{} }
func (c *fooCursor) IsLeaf() bool { return c.field != "" }
func (c *fooCursor) IsList() bool { return false }
func (c *fooCursor) IsNullable() bool { return false }
func (c *fooCursor) IsNull() bool { return c.foo == nil }
func (c *fooCursor) HasField(name string) bool { return c.field == "" && name == "name" }
func (c *fooCursor) NarrowsTo(sub engine.Type) bool { return false }

func (c *fooCursor) AsLeaf() engine.Result[engine.Json] {
	if c.field != "name" {
		return engine.Fail[engine.Json](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a leaf"))
	}
	return engine.Succeed[engine.Json](c.foo.Name)
}

func (c *fooCursor) AsList() engine.Result[[]engine.Cursor] {
	return engine.Fail[[]engine.Cursor](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a list"))
}

func (c *fooCursor) AsNullable() engine.Result[engine.Maybe] {
	return engine.Fail[engine.Maybe](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not nullable"))
}

func (c *fooCursor) Narrow(sub engine.Type) engine.Result[engine.Cursor] {
	return engine.Fail[engine.Cursor](engine.ProblemAt(c.ctx, engine.NarrowingFailed, nil, "Foo narrows to nothing"))
}

func (c *fooCursor) Field(name, alias string, args map[string]interface{}) engine.Result[engine.Cursor] {
	if name != "name" {
		return engine.Fail[engine.Cursor](engine.FieldNotFoundProblem(c, name))
	}
	return engine.Succeed[engine.Cursor](&fooCursor{
		ctx:   c.ctx.ForFieldOrAttribute(name, alias),
		foo:   c.foo,
		field: name,
	})
}

// LocalRootRunner resolves LocalSchema's Query type: "foo" returns the
// first Foo the Service carries, the same single-fixture-row style as
// model.Store's "foo"/"bar" root fields.
func (s *Service) LocalRootRunner(schema *engine.Schema) engine.RootRunner {
	ip := engine.NewInterpreter(schema, &engine.StaticMapping{}, nil)
	return func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
		field, ok := engine.FieldOf(schema.QueryType, fieldName)
		if !ok || fieldName != "foo" {
			return engine.Fail[engine.ProtoJson](engine.NewProblem(engine.FieldNotFound, "no root field %q", fieldName))
		}
		if len(s.Foos) == 0 {
			return engine.Succeed[engine.ProtoJson](&engine.PureJson{Value: nil})
		}
		rootCtx := engine.RootContext(field.Type)
		return ip.RunValue(ctx, child, field.Type, &fooCursor{ctx: rootCtx, foo: s.Foos[0]})
	}
}

// NewComponentMapping wires this Service into an ObjectMapping exposing a
// "relatedBar" Subobject on Foo, the field the host component's
// Component query node defers to.
func NewComponentMapping(fooTpe engine.Type, s *Service) engine.Mapping {
	run := s.RootRunner()
	return &engine.StaticMapping{
		Objects: []*engine.ObjectMapping{
			{
				Tpe: fooTpe,
				FieldMappings: []*engine.FieldMapping{
					{
						Name: "relatedBar",
						Subobject: &engine.Subobject{
							Mapping: &engine.StaticMapping{},
							Join:    Join,
							Run: func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
								return run(ctx, "relatedBar", args, child)
							},
						},
					},
				},
			},
		},
	}
}
