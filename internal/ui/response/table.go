package response

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/impulse/internal/domain"
)

// newResultTable renders SQL rows with a header row.
func newResultTable(r domain.SQLResponse) *widget.Table {
	table := widget.NewTableWithHeaders(
		func() (int, int) {
			return len(r.Rows), len(r.Columns)
		},
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(cellText(r, id.Row, id.Col))
		},
	)
	table.ShowHeaderColumn = false
	table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		l := obj.(*widget.Label)
		if id.Row < 0 && id.Col >= 0 && id.Col < len(r.Columns) {
			l.SetText(r.Columns[id.Col])
			l.TextStyle = fyne.TextStyle{Bold: true}
		}
	}
	for i := range r.Columns {
		table.SetColumnWidth(i, 160)
	}
	return table
}

func cellText(r domain.SQLResponse, row, col int) string {
	if row < 0 || row >= len(r.Rows) || col < 0 || col >= len(r.Rows[row]) {
		return ""
	}
	var typ domain.ColumnType
	if col < len(r.Types) {
		typ = r.Types[col]
	}
	return formatCell(r.Rows[row][col], typ)
}

// formatCell renders a decoded JSON cell according to its column type.
func formatCell(v any, typ domain.ColumnType) string {
	if v == nil {
		return "NULL"
	}
	switch typ {
	case domain.ColumnTypeNumber:
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case domain.ColumnTypeBoolean:
		if b, ok := v.(bool); ok {
			return strconv.FormatBool(b)
		}
	case domain.ColumnTypeTime:
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t.Format(time.DateTime)
			}
			return s
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
