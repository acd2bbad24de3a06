// Package treemap turns a sorted scan result into a proportional-area chart.
//
// Build assigns one palette color per top-level group, lays the buckets out
// with the squarified algorithm and prepares the legend. The chart can then be
// written as SVG or drawn into the terminal.
package treemap
