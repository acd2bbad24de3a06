package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dirmap/internal/bytefmt"
	"github.com/idelchi/dirmap/internal/dirmap"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the scan result in JSON format.
func PrintJSON(result *dirmap.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the scan result grouped by top-level folder.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(result *dirmap.Result, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	for _, g := range result.Groups() {
		fmt.Fprintf(w, "\nFolder: %s\t\t\n", g.Name)

		for _, b := range g.Buckets {
			// Paths are shown relative to their group folder.
			name := b.Path
			if g.Name != dirmap.RootGroup {
				name = strings.TrimPrefix(b.Path, g.Name+"/")
			}

			for _, f := range b.Files {
				fmt.Fprintf(w, "  %s:\t%s\n", name, bytefmt.Format(f.Size))
			}
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nSkipped:\t\t")

		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Total files:\t%d\n", result.FileCount)
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(result.TotalBytes)), result.TotalBytes) //nolint:gosec // Bytes is always positive
	fmt.Fprintf(w, "Tasks:\t%d\n", result.Tasks)
	fmt.Fprintf(w, "Skipped:\t%d\n", len(result.Errors))

	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}
