// Package model is a reference Mapping over plain Go structs: no
// database, no network, just exported fields reflected at cursor
// construction time.
package model

import (
	"context"
	"reflect"
	"strings"

	"github.com/cursorgraph/cursorql/engine"
)

// Movie, Foo and Bar are the fixture types exercised end to end (§8).
type Movie struct {
	ID    string `graphql:"id,key"`
	Title string `graphql:"title"`
}

type Foo struct {
	Value int `graphql:"value"`
}

type Bar struct {
	Message string `graphql:"message"`
}

// Store is the in-memory data set the Mapping resolves against.
type Store struct {
	Movies map[string]*Movie
	Foo    *Foo
	Bar    *Bar
}

// NewFixtureStore builds the §8 end-to-end fixture: one Movie keyed by
// id "6a78...21", a fixed Foo and Bar.
func NewFixtureStore() *Store {
	movie := &Movie{ID: "6a78...21", Title: "Celine et Julie Vont en Bateau"}
	return &Store{
		Movies: map[string]*Movie{movie.ID: movie},
		Foo:    &Foo{Value: 23},
		Bar:    &Bar{Message: "Hello world"},
	}
}

// structCursor is a Cursor over a reflected Go struct or a leaf field of
// one, keyed by the `graphql:"name"` tag convention. It never produces
// Subobject crossings itself: every field it knows about is a plain
// scalar or nested struct, resolved in-process.
type structCursor struct {
	ctx    engine.Context
	value  reflect.Value
	env    engine.Env
	parent engine.Cursor
}

func newStructCursor(ctx engine.Context, v interface{}) engine.Cursor {
	return &structCursor{ctx: ctx, value: reflect.ValueOf(v)}
}

func (c *structCursor) Context() engine.Context { return c.ctx }
func (c *structCursor) Focus() interface{}      { return c.value.Interface() }
func (c *structCursor) Env() engine.Env         { return c.env }

func (c *structCursor) Parent() (engine.Cursor, bool) {
	if c.parent == nil {
		return nil, false
	}
	return c.parent, true
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func (c *structCursor) underlying() reflect.Value { return indirect(c.value) }

func (c *structCursor) IsLeaf() bool {
	return c.underlying().Kind() != reflect.Struct
}

func (c *structCursor) IsList() bool     { return c.underlying().Kind() == reflect.Slice }
func (c *structCursor) IsNullable() bool { return c.value.Kind() == reflect.Ptr }
func (c *structCursor) IsNull() bool     { return c.value.Kind() == reflect.Ptr && c.value.IsNil() }

// fieldByTag finds the reflect.StructField whose graphql tag (or, absent
// a tag, whose lowercased Go name) matches name.
func fieldByTag(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("graphql")
		tagName := strings.Split(tag, ",")[0]
		if tagName == "" {
			tagName = strings.ToLower(f.Name)
		}
		if tagName == name {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func (c *structCursor) HasField(name string) bool {
	v := c.underlying()
	if v.Kind() != reflect.Struct {
		return false
	}
	_, ok := fieldByTag(v.Type(), name)
	return ok
}

func (c *structCursor) NarrowsTo(sub engine.Type) bool {
	return engine.NarrowsTo(c.ctx.Tpe, sub)
}

func (c *structCursor) AsLeaf() engine.Result[engine.Json] {
	if !c.IsLeaf() {
		return engine.Fail[engine.Json](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a leaf"))
	}
	if !c.underlying().IsValid() {
		return engine.Succeed[engine.Json](nil)
	}
	return engine.Succeed[engine.Json](c.underlying().Interface())
}

func (c *structCursor) AsList() engine.Result[[]engine.Cursor] {
	v := c.underlying()
	if v.Kind() != reflect.Slice {
		return engine.Fail[[]engine.Cursor](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a list"))
	}
	var of engine.Type
	if l, ok := c.ctx.Tpe.(*engine.List); ok {
		of = l.Of
	}
	cursors := make([]engine.Cursor, v.Len())
	for i := 0; i < v.Len(); i++ {
		cursors[i] = &structCursor{ctx: c.ctx.AsType(of), value: v.Index(i), parent: c}
	}
	return engine.Succeed(cursors)
}

func (c *structCursor) AsNullable() engine.Result[engine.Maybe] {
	n, ok := c.ctx.Tpe.(*engine.Nullable)
	if !ok {
		return engine.Fail[engine.Maybe](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not nullable"))
	}
	if c.IsNull() {
		return engine.Succeed(engine.Maybe{Ok: false})
	}
	inner := &structCursor{ctx: c.ctx.AsType(n.Of), value: c.value, parent: c.parent}
	return engine.Succeed(engine.Maybe{Cursor: inner, Ok: true})
}

func (c *structCursor) Narrow(sub engine.Type) engine.Result[engine.Cursor] {
	if !c.NarrowsTo(sub) {
		return engine.Fail[engine.Cursor](engine.ProblemAt(c.ctx, engine.NarrowingFailed, nil, "cannot narrow %s to %s", c.ctx.Tpe, sub))
	}
	return engine.Succeed[engine.Cursor](&structCursor{ctx: c.ctx.AsType(sub), value: c.value, parent: c.parent})
}

func (c *structCursor) Field(name, alias string, args map[string]interface{}) engine.Result[engine.Cursor] {
	v := c.underlying()
	if v.Kind() != reflect.Struct {
		return engine.Fail[engine.Cursor](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "field %q on non-struct", name))
	}
	sf, ok := fieldByTag(v.Type(), name)
	if !ok {
		return engine.Fail[engine.Cursor](engine.FieldNotFoundProblem(c, name))
	}
	next := c.ctx.ForFieldOrAttribute(name, alias)
	return engine.Succeed[engine.Cursor](&structCursor{ctx: next, value: v.FieldByIndex(sf.Index), parent: c})
}

// Schema builds the §8 fixture schema: Query { movie(id: String):
// Movie, foo: Foo, bar: Bar }.
func Schema() *engine.Schema {
	movieTpe := &engine.Object{
		Name: "Movie",
		Fields: map[string]*engine.FieldDef{
			"id":    {Name: "id", Type: &engine.Scalar{Name: "String"}},
			"title": {Name: "title", Type: &engine.Scalar{Name: "String"}},
		},
	}
	fooTpe := &engine.Object{
		Name:   "Foo",
		Fields: map[string]*engine.FieldDef{"value": {Name: "value", Type: &engine.Scalar{Name: "Int"}}},
	}
	barTpe := &engine.Object{
		Name:   "Bar",
		Fields: map[string]*engine.FieldDef{"message": {Name: "message", Type: &engine.Scalar{Name: "String"}}},
	}
	queryTpe := &engine.Object{
		Name: "Query",
		Fields: map[string]*engine.FieldDef{
			"movie": {Name: "movie", Type: &engine.Nullable{Of: movieTpe}, Args: map[string]engine.Type{"id": &engine.Scalar{Name: "String"}}},
			"foo":   {Name: "foo", Type: fooTpe},
			"bar":   {Name: "bar", Type: barTpe},
		},
	}
	return &engine.Schema{
		QueryType: queryTpe,
		Types: map[string]engine.Type{
			"Query": queryTpe, "Movie": movieTpe, "Foo": fooTpe, "Bar": barTpe,
		},
	}
}

// RootRunner builds the top-level RootRunner (§4.3's runRootValue)
// resolving "movie"/"foo"/"bar" against the Store.
func (s *Store) RootRunner(schema *engine.Schema) engine.RootRunner {
	ip := engine.NewInterpreter(schema, &engine.StaticMapping{}, nil)
	return func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
		field, ok := engine.FieldOf(schema.QueryType, fieldName)
		if !ok {
			return engine.Fail[engine.ProtoJson](engine.NewProblem(engine.FieldNotFound, "no root field %q", fieldName))
		}
		rootCtx := engine.RootContext(field.Type)
		switch fieldName {
		case "movie":
			id, _ := args["id"].(string)
			movie, found := s.Movies[id]
			if !found {
				return engine.Succeed[engine.ProtoJson](&engine.PureJson{Value: nil})
			}
			return ip.RunValue(ctx, child, field.Type, newStructCursor(rootCtx, movie))
		case "foo":
			return ip.RunValue(ctx, child, field.Type, newStructCursor(rootCtx, s.Foo))
		case "bar":
			return ip.RunValue(ctx, child, field.Type, newStructCursor(rootCtx, s.Bar))
		default:
			return engine.Fail[engine.ProtoJson](engine.NewProblem(engine.FieldNotFound, "no root field %q", fieldName))
		}
	}
}
