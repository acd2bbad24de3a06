// Package bytefmt renders byte counts the way the console listing and legend show them.
package bytefmt

import "fmt"

// units are 1024 apart; sizes beyond the last unit stay in it.
//
//nolint:gochecknoglobals // Config constant
var units = []string{"B", "KB", "MB", "GB"}

// Format returns size with two decimals in the largest unit keeping it below 1024.
func Format(size int64) string {
	value := float64(size)

	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", value, units[unit])
}
