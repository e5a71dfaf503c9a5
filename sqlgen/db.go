package sqlgen

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/samsarahq/go/oops"

	_ "github.com/go-sql-driver/mysql"
)

// DB is a *sql.DB paired with a Schema describing the tables it can
// query. Unlike the teacher's DB, which batches and caches row fetches
// across N+1 call sites (needed when many fields resolve concurrently
// against the same table), this DB only ever serves one Query per
// relational Component boundary crossing (engine.Subobject.Run), so
// there is nothing to batch: a Subobject already runs once per parent
// cursor, not once per field.
type DB struct {
	Conn   *sql.DB
	Schema *Schema
}

func NewDB(conn *sql.DB, schema *Schema) *DB {
	return &DB{Conn: conn, Schema: schema}
}

// Query runs a filtered SELECT against table, scanning matching rows
// into *dest (a pointer to a slice of pointers to table's registered
// row type). Columns are selected and scanned in the table's
// registration order; filter keys are ANDed together as column = ?.
func (db *DB) Query(ctx context.Context, table string, dest interface{}, filter Filter) error {
	t, ok := db.Schema.ByName[table]
	if !ok {
		return fmt.Errorf("sqlgen: unregistered table %q", table)
	}

	clause, args := makeWhere(filter)
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.Name
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
	if clause != "" {
		query += " WHERE " + clause
	}

	rows, err := db.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return oops.Wrapf(err, "sqlgen: query %s", table)
	}
	defer rows.Close()

	destSlice := reflect.ValueOf(dest).Elem()
	for rows.Next() {
		rowPtr := reflect.New(t.Type)
		scanArgs := make([]interface{}, len(t.Columns))
		for i, c := range t.Columns {
			scanArgs[i] = rowPtr.Elem().FieldByName(c.Field).Addr().Interface()
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return oops.Wrapf(err, "sqlgen: scan %s", table)
		}
		destSlice.Set(reflect.Append(destSlice, rowPtr))
	}
	return oops.Wrapf(rows.Err(), "sqlgen: iterate %s", table)
}

// makeWhere builds a deterministic (sorted by column name, so repeated
// calls with the same filter produce identical SQL text) AND-clause
// plus its positional args.
func makeWhere(filter Filter) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}
	columns := make([]string, 0, len(filter))
	for c := range filter {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		conds[i] = c + " = ?"
		args[i] = filter[c]
	}
	return strings.Join(conds, " AND "), args
}
