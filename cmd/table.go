package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// table renders aligned columns. Cells are measured in terminal cells, so
// emoji and wide characters line up.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) error {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	header := lipgloss.NewRenderer(w).NewStyle().Bold(true)

	var sb strings.Builder
	writeLine := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				sb.WriteString(style.Render(cell))
			} else {
				sb.WriteString(cell)
			}
			if i < len(widths)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
				sb.WriteString(columnGap)
			}
		}
		sb.WriteString("\n")
	}

	writeLine(t.headers, &header)
	for _, row := range t.rows {
		writeLine(row, nil)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
