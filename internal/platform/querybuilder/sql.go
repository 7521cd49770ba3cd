// Package querybuilder renders the small subset of PostgreSQL statements the
// repositories need, numbering placeholders $1..$n in argument order.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errNoTable   = errors.New("querybuilder: table is required")
	errNoColumns = errors.New("querybuilder: at least one column is required")
)

type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(v any) {
	w.args = append(w.args, v)
	w.WriteByte('$')
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *sqlWriter) list(keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	w.WriteString(keyword)
	w.WriteString(strings.Join(items, ", "))
}

func (w *sqlWriter) where(conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		c.render(w)
	}
}

func (w *sqlWriter) suffix(s string) {
	if s = strings.TrimSpace(s); s != "" {
		w.WriteByte(' ')
		w.WriteString(s)
	}
}

func (w *sqlWriter) result() (string, []any, error) {
	return w.String(), w.args, nil
}

// Condition is one predicate of a WHERE clause. Conditions are ANDed.
type Condition interface {
	render(w *sqlWriter)
}

type condFunc func(w *sqlWriter)

func (f condFunc) render(w *sqlWriter) { f(w) }

func Eq(column string, value any) Condition {
	return condFunc(func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" = ")
		w.bind(value)
	})
}

// In renders "column IN (...)". An empty list matches nothing.
func In[T any](column string, values []T) Condition {
	return condFunc(func(w *sqlWriter) {
		if len(values) == 0 {
			w.WriteString("FALSE")
			return
		}
		w.WriteString(column)
		w.WriteString(" IN (")
		for i, v := range values {
			if i > 0 {
				w.WriteString(", ")
			}
			w.bind(v)
		}
		w.WriteByte(')')
	})
}

func IsNull(column string) Condition {
	return condFunc(func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" IS NULL")
	})
}
