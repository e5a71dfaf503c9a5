// Package sqlgen is a relational engine.Mapping: rows scanned from a
// plain *sql.DB, via a table registered by reflecting over a tagged Go
// struct, the same `sql:"column"` tag convention the teacher's
// reflection-heavy row mapper used, trimmed down to the single path
// this module's relational component actually needs (filtered SELECT,
// no inserts, no batching, no dynamic sharding).
package sqlgen

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Filter is an equality WHERE clause: column -> required value.
type Filter map[string]interface{}

// Column describes one scanned field of a registered row type.
type Column struct {
	Name  string // SQL column name
	Field string // Go struct field name
}

// Table is a registered row type: its SQL name and the columns
// reflected from its struct tags.
type Table struct {
	Name    string
	Type    reflect.Type
	Columns []Column
}

// Schema collects the tables registered for one *DB.
type Schema struct {
	ByName map[string]*Table
}

func NewSchema() *Schema {
	return &Schema{ByName: make(map[string]*Table)}
}

// RegisterType reflects over row's exported fields, building a Table
// named name. Each field's column is its `sql:"..."` tag, or the
// snake_case of the field name if the tag is absent or empty.
func (s *Schema) RegisterType(name string, row interface{}) error {
	t := reflect.TypeOf(row)
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("sqlgen: RegisterType(%s): expected a struct, got %s", name, t.Kind())
	}

	table := &Table{Name: name, Type: t}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		column := columnName(f)
		table.Columns = append(table.Columns, Column{Name: column, Field: f.Name})
	}
	s.ByName[name] = table
	return nil
}

func (s *Schema) MustRegisterType(name string, row interface{}) {
	if err := s.RegisterType(name, row); err != nil {
		panic(err)
	}
}

func columnName(f reflect.StructField) string {
	tag := strings.Split(f.Tag.Get("sql"), ",")[0]
	if tag != "" {
		return tag
	}
	return makeSnake(f.Name)
}

// makeSnake lowercases a Go identifier at its capital-letter boundaries
// ("MovieID" -> "movie_id"), the default column name for an un-tagged
// field.
func makeSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, c := range runes {
		if i > 0 && unicode.IsUpper(c) && !unicode.IsUpper(runes[i-1]) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}
