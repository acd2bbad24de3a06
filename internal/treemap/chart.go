package treemap

import (
	"errors"
	"fmt"

	"github.com/idelchi/dirmap/internal/bytefmt"
	"github.com/idelchi/dirmap/internal/dirmap"
)

// ErrEmptyResult is returned by Build when the buckets hold zero bytes in total.
var ErrEmptyResult = errors.New("total size is zero")

const (
	// DefaultWidth is the default chart width in chart units.
	DefaultWidth = 1200
	// DefaultHeight is the default chart height in chart units.
	DefaultHeight = 1000
	// DefaultLegendLimit is the default number of legend entries kept.
	DefaultLegendLimit = 40
)

// Options configures chart construction.
type Options struct {
	// Width and Height bound the tile area (defaults apply when not positive).
	Width  float64
	Height float64
	// LegendLimit caps the legend (0 = unlimited).
	LegendLimit int
	// Colors selects the group color assignment.
	Colors ColorMode
}

// DefaultOptions returns the default chart options.
func DefaultOptions() Options {
	return Options{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		LegendLimit: DefaultLegendLimit,
		Colors:      ColorsByOrder,
	}
}

// Tile is one bucket's rectangle.
type Tile struct {
	Path  string `json:"path"`
	Group string `json:"group"`
	Size  int64  `json:"size"`
	Color string `json:"color"`
	Rect  Rect   `json:"rect"`
}

// LegendEntry labels one file.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Chart is a laid-out treemap ready for rendering.
type Chart struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	TotalBytes int64   `json:"total_bytes"`
	// Tiles holds one tile per non-empty bucket, in bucket order.
	Tiles []Tile `json:"tiles"`
	// Groups lists the distinct top-level groups in first-seen order.
	Groups []string `json:"groups"`
	// Colors maps each group to its palette color.
	Colors map[string]string `json:"colors"`
	// Legend holds at most LegendLimit entries.
	Legend []LegendEntry `json:"legend"`
	// LegendTotal is the number of files before truncation.
	LegendTotal int `json:"legend_total"`
	// Truncated reports whether the legend was cut at the limit.
	Truncated bool `json:"truncated"`
}

// LegendLabel formats a legend line for a file recorded under path.
func LegendLabel(path string, file dirmap.FileEntry) string {
	return fmt.Sprintf("%s - %s (%s)", path, file.Name, bytefmt.Format(file.Size))
}

// Build lays out buckets as a treemap. Each bucket's area is proportional to
// its share of the total size. Buckets are expected in sorted order so that
// groups stay contiguous.
func Build(buckets []dirmap.Bucket, opt Options) (*Chart, error) {
	if opt.Width <= 0 {
		opt.Width = DefaultWidth
	}

	if opt.Height <= 0 {
		opt.Height = DefaultHeight
	}

	var total int64

	groups := make([]string, 0)
	seen := make(map[string]struct{})

	for _, b := range buckets {
		total += b.Size()

		g := b.Group()
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			groups = append(groups, g)
		}
	}

	if total <= 0 {
		return nil, ErrEmptyResult
	}

	colors := AssignColors(groups, opt.Colors)

	weights := make([]float64, len(buckets))
	for i, b := range buckets {
		weights[i] = float64(b.Size()) / float64(total)
	}

	rects := Squarify(weights, Rect{W: opt.Width, H: opt.Height})

	chart := &Chart{
		Width:      opt.Width,
		Height:     opt.Height,
		TotalBytes: total,
		Groups:     groups,
		Colors:     colors,
	}

	for i, b := range buckets {
		color := colors[b.Group()]

		if size := b.Size(); size > 0 {
			chart.Tiles = append(chart.Tiles, Tile{
				Path:  b.Path,
				Group: b.Group(),
				Size:  size,
				Color: color,
				Rect:  rects[i],
			})
		}

		for _, f := range b.Files {
			chart.LegendTotal++

			if opt.LegendLimit > 0 && len(chart.Legend) >= opt.LegendLimit {
				chart.Truncated = true

				continue
			}

			chart.Legend = append(chart.Legend, LegendEntry{Label: LegendLabel(b.Path, f), Color: color})
		}
	}

	return chart, nil
}
