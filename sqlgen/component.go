// This file adapts sqlgen's DB.Query (db.go, schema.go) into a
// relational engine.Mapping: rows scanned into a tagged Go struct are
// wrapped the same way model's structCursor wraps an in-memory struct,
// except fields here come from `sql:"column"` tags via sqlgen.Schema
// rather than in-process Go values.
package sqlgen

import (
	"context"
	"reflect"
	"strings"

	"github.com/cursorgraph/cursorql/engine"
)

// Rating is a relational fixture: a movie's star rating, stored in its
// own table and reached from Movie only through a Component boundary,
// following this package's one-table-per-struct convention
// (schema.go's RegisterType).
type Rating struct {
	MovieID string `sql:"movie_id,primary" graphql:"movieId"`
	Stars   int    `sql:"stars" graphql:"stars"`
}

// RatingStore wraps a *DB registered with the Rating table.
type RatingStore struct {
	DB     *DB
	Schema *Schema
}

// NewRatingStore builds a Schema with the ratings table registered and
// pairs it with db, mirroring this package's usual
// schema.MustRegisterType + sqlgen.NewDB pairing. db may be nil in tests
// that never reach the database (RootRunner reports an empty result set
// in that case).
func NewRatingStore(db *DB) *RatingStore {
	schema := NewSchema()
	schema.MustRegisterType("ratings", Rating{})
	return &RatingStore{DB: db, Schema: schema}
}

// rowCursor is a leaf-only reflective Cursor over one scanned row,
// keyed by the `graphql` tag the way model.structCursor is, kept as its
// own (simpler, no nesting/no lists) type here because every sqlgen
// fixture row is flat.
type rowCursor struct {
	ctx   engine.Context
	value reflect.Value
	field string
}

func graphqlTag(f reflect.StructField) string {
	tag := strings.Split(f.Tag.Get("graphql"), ",")[0]
	if tag == "" {
		tag = strings.ToLower(f.Name)
	}
	return tag
}

func (c *rowCursor) Context() engine.Context      { return c.ctx }
func (c *rowCursor) Focus() interface{}           { return c.value.Interface() }
func (c *rowCursor) Parent() (engine.Cursor, bool) { return nil, false }
func (c *rowCursor) Env() engine.Env              { return engine.Env{} }
func (c *rowCursor) IsLeaf() bool                 { return c.field != "" }
func (c *rowCursor) IsList() bool                 { return false }
func (c *rowCursor) IsNullable() bool             { return false }
func (c *rowCursor) IsNull() bool                 { return false }

func (c *rowCursor) HasField(name string) bool {
	if c.field != "" {
		return false
	}
	t := c.value.Type()
	for i := 0; i < t.NumField(); i++ {
		if graphqlTag(t.Field(i)) == name {
			return true
		}
	}
	return false
}

func (c *rowCursor) NarrowsTo(sub engine.Type) bool { return false }

func (c *rowCursor) AsLeaf() engine.Result[engine.Json] {
	if c.field == "" {
		return engine.Fail[engine.Json](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a leaf"))
	}
	return engine.Succeed[engine.Json](c.value.FieldByName(c.field).Interface())
}

func (c *rowCursor) AsList() engine.Result[[]engine.Cursor] {
	return engine.Fail[[]engine.Cursor](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not a list"))
}

func (c *rowCursor) AsNullable() engine.Result[engine.Maybe] {
	return engine.Fail[engine.Maybe](engine.ProblemAt(c.ctx, engine.TypeMismatch, nil, "not nullable"))
}

func (c *rowCursor) Narrow(sub engine.Type) engine.Result[engine.Cursor] {
	return engine.Fail[engine.Cursor](engine.ProblemAt(c.ctx, engine.NarrowingFailed, nil, "Rating narrows to nothing"))
}

func (c *rowCursor) Field(name, alias string, args map[string]interface{}) engine.Result[engine.Cursor] {
	t := c.value.Type()
	for i := 0; i < t.NumField(); i++ {
		if graphqlTag(t.Field(i)) == name {
			return engine.Succeed[engine.Cursor](&rowCursor{
				ctx:   c.ctx.ForFieldOrAttribute(name, alias),
				value: c.value,
				field: t.Field(i).Name,
			})
		}
	}
	return engine.Fail[engine.Cursor](engine.FieldNotFoundProblem(c, name))
}

// RatingSchema describes the Rating type: { movieId, stars }.
func RatingSchema() *engine.Schema {
	ratingTpe := &engine.Object{
		Name: "Rating",
		Fields: map[string]*engine.FieldDef{
			"movieId": {Name: "movieId", Type: &engine.Scalar{Name: "String"}},
			"stars":   {Name: "stars", Type: &engine.Scalar{Name: "Int"}},
		},
	}
	return &engine.Schema{Types: map[string]engine.Type{"Rating": ratingTpe}, QueryType: ratingTpe}
}

// RootRunner is the relational component's runRootValue: it runs
// DB.Query against the ratings table filtered by movieId (the join key
// Component's JoinFunc carries over from the Movie cursor) and wraps the
// first matching row, or null if the movie has no rating.
func (s *RatingStore) RootRunner() engine.RootRunner {
	schema := RatingSchema()
	ip := engine.NewInterpreter(schema, &engine.StaticMapping{}, nil)
	return func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
		movieID, _ := args["movieId"].(string)
		var rows []*Rating
		if s.DB != nil {
			if err := s.DB.Query(ctx, "ratings", &rows, Filter{"movie_id": movieID}); err != nil {
				return engine.Fail[engine.ProtoJson](engine.WrapInternal(engine.RootContext(schema.QueryType), engine.EmptyResult, err, "query ratings for movie %q", movieID))
			}
		}
		if len(rows) == 0 {
			return engine.Succeed[engine.ProtoJson](&engine.PureJson{Value: nil})
		}
		cursor := &rowCursor{ctx: engine.RootContext(schema.QueryType), value: reflect.ValueOf(*rows[0])}
		return ip.RunValue(ctx, child, schema.QueryType, cursor)
	}
}

// Join adapts a Movie cursor into the ratings lookup, carrying the
// movie's id field forward as the filter key.
func Join(cursor engine.Cursor, child engine.Query) engine.Result[engine.Query] {
	idCursor, ok := cursor.Field("id", "", nil).Value()
	if !ok {
		return engine.Fail[engine.Query](engine.ProblemAt(cursor.Context(), engine.TypeMismatch, nil, "join requires an id field"))
	}
	id, ok := idCursor.AsLeaf().Value()
	if !ok {
		return engine.Fail[engine.Query](engine.ProblemAt(cursor.Context(), engine.TypeMismatch, nil, "id is not a leaf"))
	}
	return engine.Succeed[engine.Query](&engine.Select{
		Name:  "rating",
		Args:  engine.Args{"movieId": id},
		Child: child,
	})
}

// NewComponentMapping wires this store into an ObjectMapping exposing a
// "rating" Subobject on Movie.
func NewComponentMapping(movieTpe engine.Type, s *RatingStore) engine.Mapping {
	run := s.RootRunner()
	return &engine.StaticMapping{
		Objects: []*engine.ObjectMapping{
			{
				Tpe: movieTpe,
				FieldMappings: []*engine.FieldMapping{
					{
						Name: "rating",
						Subobject: &engine.Subobject{
							Mapping: &engine.StaticMapping{},
							Join:    Join,
							Run: func(ctx context.Context, fieldName string, args engine.Args, child engine.Query) engine.Result[engine.ProtoJson] {
								return run(ctx, "rating", args, child)
							},
						},
					},
				},
			},
		},
	}
}
