package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows with space-aligned columns and no borders. Widths are
// measured in terminal cells so styled and wide characters line up.
type Table struct {
	header     []string
	rows       [][]string
	colWidths  []int
	colPadding int
	maxWidth   int
}

// NewTable creates a new table with the specified number of columns
func NewTable(cols int) *Table {
	return &Table{
		colWidths:  make([]int, cols),
		colPadding: 2,
	}
}

// SetHeader sets a muted header row.
func (t *Table) SetHeader(cells ...string) {
	t.header = make([]string, len(t.colWidths))
	copy(t.header, cells)
	t.track(t.header)
}

// SetMaxWidth truncates the last column so rows fit in width cells.
func (t *Table) SetMaxWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	copy(row, cells)
	t.track(row)
	t.rows = append(t.rows, row)
}

func (t *Table) track(row []string) {
	for i := range t.colWidths {
		if i < len(row) {
			if w := lipgloss.Width(row[i]); w > t.colWidths[i] {
				t.colWidths[i] = w
			}
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table as a string
func (t *Table) String() string {
	if len(t.rows) == 0 {
		return ""
	}

	var sb strings.Builder
	if t.header != nil {
		t.writeRow(&sb, t.header, Muted)
	}
	for _, row := range t.rows {
		t.writeRow(&sb, row, lipgloss.NewStyle())
	}
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row []string, style lipgloss.Style) {
	padding := strings.Repeat(" ", t.colPadding)
	used := 0
	for i, cell := range row {
		if i > 0 {
			sb.WriteString(padding)
			used += t.colPadding
		}
		if i < len(row)-1 {
			sb.WriteString(style.Render(cell))
			sb.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
			used += t.colWidths[i]
			continue
		}
		if t.maxWidth > 0 {
			cell = Truncate(cell, t.maxWidth-used)
		}
		sb.WriteString(style.Render(cell))
	}
	sb.WriteString("\n")
}

// Truncate shortens plain text to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
