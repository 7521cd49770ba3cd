package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append(b.columns, columns...)
	return b
}

// Values adds one row. Call it repeatedly for a multi-row insert.
func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, values)
	return b
}

// Suffix is appended verbatim, e.g. "ON CONFLICT ... DO NOTHING".
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = sql
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if b.table == "" {
		return "", nil, errNoTable
	}
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if len(b.rows) == 0 {
		return "", nil, errors.New("querybuilder: insert needs at least one row")
	}

	var w sqlWriter
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("querybuilder: row %d has %d values for %d columns", i, len(row), len(b.columns))
		}
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteByte(')')
	}
	w.suffix(b.suffix)
	return w.result()
}

// InsertModel inserts one row built from the exported `db`-tagged fields
// of a struct, in field order.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).Columns(columns...).Values(values...).Suffix(suffix).ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("querybuilder: model is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("querybuilder: model must be a struct, got %s", v.Kind())
	}

	var (
		columns []string
		values  []any
	)
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if name = strings.TrimSpace(name); name == "" || name == "-" {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.FieldByIndex(field.Index).Interface())
	}
	if len(columns) == 0 {
		return nil, nil, errNoColumns
	}
	return columns, values, nil
}
