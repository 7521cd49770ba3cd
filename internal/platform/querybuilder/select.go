package querybuilder

import "strconv"

type SelectBuilder struct {
	columns []string
	from    string
	conds   []Condition
	groupBy []string
	orderBy []string
	limit   int
	suffix  string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// From takes a table name or any join expression.
func (b *SelectBuilder) From(from string) *SelectBuilder {
	b.from = from
	return b
}

func (b *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	b.conds = append(b.conds, conds...)
	return b
}

func (b *SelectBuilder) GroupBy(exprs ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, exprs...)
	return b
}

func (b *SelectBuilder) OrderBy(exprs ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, exprs...)
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = n
	return b
}

// Suffix is appended verbatim, e.g. "FOR UPDATE".
func (b *SelectBuilder) Suffix(sql string) *SelectBuilder {
	b.suffix = sql
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, errNoColumns
	}
	if b.from == "" {
		return "", nil, errNoTable
	}

	var w sqlWriter
	w.list("SELECT ", b.columns)
	w.WriteString(" FROM ")
	w.WriteString(b.from)
	w.where(b.conds)
	w.list(" GROUP BY ", b.groupBy)
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	w.suffix(b.suffix)
	return w.result()
}
