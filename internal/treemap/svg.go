package treemap

import (
	"fmt"
	"html"
	"io"
	"text/template"
)

const (
	legendWidth      = 480
	legendLineHeight = 18
	legendPadding    = 12
)

// svgTemplate draws the tiles on the left and the legend panel on the right.
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{ num .Total }}" height="{{ num .Canvas }}" viewBox="0 0 {{ num .Total }} {{ num .Canvas }}">
<rect x="0" y="0" width="{{ num .Total }}" height="{{ num .Canvas }}" fill="#ffffff"/>
<g id="tiles">
{{- range .Chart.Tiles }}
<rect x="{{ num .Rect.X }}" y="{{ num .Rect.Y }}" width="{{ num .Rect.W }}" height="{{ num .Rect.H }}" fill="{{ .Color }}" fill-opacity="0.7" stroke="#000000" stroke-width="1"><title>{{ esc .Path }}</title></rect>
{{- end }}
</g>
<g id="legend" font-family="sans-serif" font-size="11">
<text x="{{ num .LegendX }}" y="{{ num .TitleY }}" font-size="13" font-weight="bold">Legend</text>
{{- range $i, $e := .Chart.Legend }}
<rect x="{{ num $.LegendX }}" y="{{ num (boxY $i) }}" width="10" height="10" fill="{{ $e.Color }}" fill-opacity="0.7"/>
<text x="{{ num (textX) }}" y="{{ num (textY $i) }}">{{ esc $e.Label }}</text>
{{- end }}
</g>
</svg>
`

// WriteSVG renders chart as an SVG document.
func WriteSVG(w io.Writer, chart *Chart) error {
	legendX := chart.Width + legendPadding
	titleY := float64(legendPadding + legendLineHeight)

	canvas := chart.Height
	if need := titleY + float64(len(chart.Legend)+1)*legendLineHeight; need > canvas {
		canvas = need
	}

	funcs := template.FuncMap{
		"esc": html.EscapeString,
		"num": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"boxY": func(i int) float64 {
			return titleY + float64(i)*legendLineHeight + legendLineHeight/2
		},
		"textX": func() float64 {
			return legendX + 16
		},
		"textY": func(i int) float64 {
			return titleY + float64(i+1)*legendLineHeight
		},
	}

	tmpl, err := template.New("treemap").Funcs(funcs).Parse(svgTemplate)
	if err != nil {
		return fmt.Errorf("parsing svg template: %w", err)
	}

	if err := tmpl.Execute(w, map[string]any{
		"Chart":   chart,
		"Total":   chart.Width + legendWidth,
		"Canvas":  canvas,
		"LegendX": legendX,
		"TitleY":  titleY,
	}); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}

	return nil
}
