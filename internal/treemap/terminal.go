package treemap

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTerminal draws the chart as a cols x rows grid of colored cells
// followed by the legend, one line per entry.
func RenderTerminal(chart *Chart, cols, rows int) string {
	var b strings.Builder

	if cols <= 0 || rows <= 0 {
		return ""
	}

	cellW := chart.Width / float64(cols)
	cellH := chart.Height / float64(rows)

	for row := range rows {
		y := (float64(row) + 0.5) * cellH

		run, runTile := 0, -2

		flush := func() {
			if run == 0 {
				return
			}

			b.WriteString(cellStyle(chart, runTile).Render(strings.Repeat(" ", run)))
		}

		for col := range cols {
			x := (float64(col) + 0.5) * cellW

			tile := tileAt(chart, x, y)
			if tile != runTile {
				flush()

				run, runTile = 0, tile
			}

			run++
		}

		flush()
		b.WriteString("\n")
	}

	title := lipgloss.NewStyle().Bold(true)
	b.WriteString(title.Render("Legend"))
	b.WriteString("\n")

	for _, e := range chart.Legend {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Color)).Render("■")
		b.WriteString(swatch + " " + e.Label + "\n")
	}

	return b.String()
}

// tileAt returns the index of the tile containing the point, or -1.
func tileAt(chart *Chart, x, y float64) int {
	for i, t := range chart.Tiles {
		if t.Rect.Contains(x, y) {
			return i
		}
	}

	return -1
}

// cellStyle returns the background style of a tile; -1 is the unstyled gap.
func cellStyle(chart *Chart, tile int) lipgloss.Style {
	style := lipgloss.NewStyle()
	if tile < 0 {
		return style
	}

	return style.Background(lipgloss.Color(chart.Tiles[tile].Color))
}
