package treemap

import (
	"fmt"

	"github.com/taigrr/colorhash"
)

// ColorMode selects how top-level groups are mapped onto the palette.
type ColorMode string

const (
	// ColorsByOrder assigns palette colors in first-seen group order.
	ColorsByOrder ColorMode = "order"
	// ColorsByHash keys the palette with a hash of the group name, so a group
	// keeps its color across scans.
	ColorsByHash ColorMode = "hash"
)

// Set1 is the qualitative palette used for group colors.
//
//nolint:gochecknoglobals // Config constant
var Set1 = []string{
	"#e41a1c",
	"#377eb8",
	"#4daf4a",
	"#984ea3",
	"#ff7f00",
	"#ffff33",
	"#a65628",
	"#f781bf",
	"#999999",
}

// ParseColorMode validates a color mode name.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(s); mode {
	case ColorsByOrder, ColorsByHash:
		return mode, nil
	case "":
		return ColorsByOrder, nil
	default:
		return "", fmt.Errorf("unknown color mode %q: must be one of [%s %s]", s, ColorsByOrder, ColorsByHash)
	}
}

// AssignColors maps every distinct group to a palette color. Groups are taken
// in the order given; the palette cycles once exhausted.
func AssignColors(groups []string, mode ColorMode) map[string]string {
	colors := make(map[string]string, len(groups))
	next := 0

	for _, g := range groups {
		if _, ok := colors[g]; ok {
			continue
		}

		idx := next
		if mode == ColorsByHash {
			idx = int(colorhash.HashString(g))
		}

		colors[g] = paletteColor(idx)
		next++
	}

	return colors
}

func paletteColor(idx int) string {
	idx %= len(Set1)
	if idx < 0 {
		idx += len(Set1)
	}

	return Set1[idx]
}
