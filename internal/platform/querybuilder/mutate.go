package querybuilder

import "errors"

type assignment struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	conds []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression such as NOW().
func (b *UpdateBuilder) SetExpr(column, expr string) *UpdateBuilder {
	b.sets = append(b.sets, assignment{column: column, raw: expr})
	return b
}

func (b *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if b.table == "" {
		return "", nil, errNoTable
	}
	if len(b.sets) == 0 {
		return "", nil, errors.New("querybuilder: update needs at least one assignment")
	}

	var w sqlWriter
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	w.WriteString(" SET ")
	for i, a := range b.sets {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(a.column)
		w.WriteString(" = ")
		if a.raw != "" {
			w.WriteString(a.raw)
		} else {
			w.bind(a.value)
		}
	}
	w.where(b.conds)
	return w.result()
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

// ToSQL refuses to render an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if b.table == "" {
		return "", nil, errNoTable
	}
	if len(b.conds) == 0 {
		return "", nil, errors.New("querybuilder: delete without a condition")
	}

	var w sqlWriter
	w.WriteString("DELETE FROM ")
	w.WriteString(b.table)
	w.where(b.conds)
	return w.result()
}
