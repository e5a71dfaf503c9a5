package engine

// Context is the immutable triple carried with every cursor (§3): the
// schema path and the aliased result path from the root to the current
// position, both innermost-first, plus the current GraphQL type.
//
// Invariant: len(Path) == len(ResultPath), maintained by every
// constructor below (each one extends both paths together).
type Context struct {
	Path       []string
	ResultPath []string
	Tpe        Type
}

// RootContext builds the Context for a root cursor positioned at tpe.
func RootContext(tpe Type) Context {
	return Context{Tpe: tpe}
}

// AsType returns a Context identical to c but positioned at a different
// type, leaving both paths untouched (used when narrowing or unwrapping
// Nullable/List without moving to a new field).
func (c Context) AsType(tpe Type) Context {
	return Context{Path: c.Path, ResultPath: c.ResultPath, Tpe: tpe}
}

func prepend(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, name)
	out = append(out, path...)
	return out
}

// ForField looks up name on c.Tpe and, if declared, returns the Context
// for that field: its type is the field's declared type, and name/alias
// are prepended to Path/ResultPath respectively. Returns ok=false when
// the field is not declared on the current type.
func (c Context) ForField(name, alias string) (Context, bool) {
	field, ok := FieldOf(c.Tpe, name)
	if !ok {
		return Context{}, false
	}
	if alias == "" {
		alias = name
	}
	return Context{
		Path:       prepend(c.Path, name),
		ResultPath: prepend(c.ResultPath, alias),
		Tpe:        field.Type,
	}, true
}

// ForFieldOrAttribute behaves like ForField, but falls back to a
// synthetic attribute Scalar type when the field is not declared on the
// schema — used for mapping-level pseudo-fields (§3) that exist only in
// a Mapping's fieldMappings, not in the schema proper.
func (c Context) ForFieldOrAttribute(name, alias string) Context {
	if next, ok := c.ForField(name, alias); ok {
		return next
	}
	if alias == "" {
		alias = name
	}
	return Context{
		Path:       prepend(c.Path, name),
		ResultPath: prepend(c.ResultPath, alias),
		Tpe:        attributeType,
	}
}

// ForPath folds ForField over names in order, failing as soon as any
// step names an undeclared field.
func (c Context) ForPath(names []string) (Context, bool) {
	cur := c
	for _, name := range names {
		next, ok := cur.ForField(name, "")
		if !ok {
			return Context{}, false
		}
		cur = next
	}
	return cur, true
}
