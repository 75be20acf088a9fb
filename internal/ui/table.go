package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows as aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column titles.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Missing cells render as "-", extra cells are dropped.
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]string, len(t.Headers))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	return t
}

// Render returns the table as a string, one line per row.
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := lipgloss.Width(displayCell(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(t.renderLine(t.Headers, widths, func(string) lipgloss.Style { return TableHeaderStyle }))
	for _, row := range t.Rows {
		b.WriteString("\n")
		b.WriteString(t.renderLine(row, widths, func(cell string) lipgloss.Style {
			if cell == "" {
				return TableMutedCellStyle
			}
			return TableCellStyle
		}))
	}
	return b.String()
}

func (t *Table) renderLine(cells []string, widths []int, style func(string) lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		text := displayCell(cell)
		if i < len(cells)-1 {
			text += strings.Repeat(" ", widths[i]-lipgloss.Width(text))
		}
		parts[i] = style(cell).Render(text)
	}
	return "  " + strings.Join(parts, "  ")
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}

func displayCell(cell string) string {
	if cell == "" {
		return "-"
	}
	return cell
}
