package ead

import (
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/mdast"
)

// tableState tracks the table being rendered and the column cursor of the
// current row. It is only populated inside a Table subtree.
type tableState struct {
	table  *mdast.Table
	column int
}

// enter activates t and returns a func restoring the enclosing state, which
// is the zero state outside of nested tables.
func (s *tableState) enter(t *mdast.Table) (restore func()) {
	saved := *s
	s.table = t
	s.column = 0
	return func() { *s = saved }
}

func (s *tableState) startRow() {
	s.column = 0
}

// currentColumn returns the column definition under the cursor.
func (s *tableState) currentColumn() (*mdast.TableColumn, error) {
	if s.table == nil {
		return nil, errors.MalformedTreeError("table cell outside of a table").Build()
	}
	if s.column < 0 || s.column >= len(s.table.Columns) {
		return nil, errors.MalformedTreeError("table cell beyond declared columns").
			WithContext("column", s.column).
			WithContext("columns", len(s.table.Columns)).
			Build()
	}
	col := s.table.Columns[s.column]
	if col == nil {
		return nil, errors.MalformedTreeError("missing table column definition").
			WithContext("column", s.column).
			Build()
	}
	return col, nil
}

// advance moves the cursor past a cell spanning span columns.
func (s *tableState) advance(span int) {
	if span < 1 {
		span = 1
	}
	s.column += span
}

// alignAttribute returns the align attribute value for a column, or "" for
// columns without alignment.
func alignAttribute(col *mdast.TableColumn) (string, error) {
	switch col.Alignment {
	case mdast.AlignNone:
		return "", nil
	case mdast.AlignLeft:
		return "left", nil
	case mdast.AlignRight:
		return "right", nil
	case mdast.AlignCenter:
		return "center", nil
	default:
		return "", errors.MalformedTreeError("unknown column alignment").
			WithContext("alignment", int(col.Alignment)).
			Build()
	}
}
