package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/idelchi/dirmap/internal/config"
	"github.com/idelchi/dirmap/internal/dirmap"
	"github.com/idelchi/dirmap/internal/treemap"
)

// Console notices for the chart branches.
const (
	emptyNotice     = "Total size is zero. Cannot create treemap."
	truncatedNotice = "Legend truncated due to size limit."
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// newProgressBar returns scan hooks driving a progress bar on w, and a function clearing it.
func newProgressBar(w io.Writer) (dirmap.Hooks, func()) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Scanning…"),
		progressbar.OptionClearOnFinish(),
	)

	hooks := dirmap.Hooks{
		Progress: func(files, bytes int64) {
			bar.Describe(fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes)))) //nolint:gosec // Bytes is always positive
		},
		TaskDone: func(done, total int) {
			if bar.GetMax() != total {
				bar.ChangeMax(total)
			}

			_ = bar.Set(done)
		},
	}

	return hooks, func() {
		_ = bar.Finish()
		_ = bar.Clear()
	}
}

// scanOptions translates the configuration into scan options for path.
func scanOptions(cfg *config.Config, path string, debugOut io.Writer) (dirmap.Options, error) {
	options := dirmap.Options{
		Path:        path,
		Excludes:    cfg.Scan.Excludes,
		Ignores:     cfg.Scan.Ignores,
		Workers:     cfg.Scan.Workers,
		FailFast:    cfg.Scan.FailFast,
		Debug:       cfg.Logging.Debug,
		DebugWriter: debugOut,
	}

	// Parse minSize string to bytes
	if cfg.Scan.MinSize != "" {
		size, err := humanize.ParseBytes(cfg.Scan.MinSize)
		if err != nil {
			return options, fmt.Errorf("invalid min-size: %w", err)
		}

		options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	return options, nil
}

// chartOptions translates the configuration into chart options.
func chartOptions(cfg *config.Config) (treemap.Options, error) {
	mode, err := treemap.ParseColorMode(cfg.Chart.Colors)
	if err != nil {
		return treemap.Options{}, err
	}

	return treemap.Options{
		Width:       float64(cfg.Chart.Width),
		Height:      float64(cfg.Chart.Height),
		LegendLimit: cfg.Chart.LegendLimit,
		Colors:      mode,
	}, nil
}

// renderChart builds the treemap and writes it wherever the configuration asks.
// Notices go to notices; the terminal chart goes to stdout when terminal is set.
//
//nolint:forbidigo // Notices are console output.
func renderChart(result *dirmap.Result, cfg *config.Config, stdout, notices io.Writer, terminal bool) error {
	opts, err := chartOptions(cfg)
	if err != nil {
		return err
	}

	chart, err := treemap.Build(result.Buckets, opts)
	if errors.Is(err, treemap.ErrEmptyResult) {
		fmt.Fprintln(notices, emptyNotice)

		return nil
	}

	if err != nil {
		return err
	}

	if chart.Truncated {
		fmt.Fprintln(notices, truncatedNotice)
	}

	if cfg.Chart.SVG != "" {
		if err := writeSVGFile(cfg.Chart.SVG, chart); err != nil {
			return err
		}

		fmt.Fprintf(notices, "Treemap written to %s\n", cfg.Chart.SVG)
	}

	if terminal {
		fmt.Fprint(stdout, "\n", treemap.RenderTerminal(chart, cfg.Chart.Columns, cfg.Chart.Rows))
	}

	return nil
}

func writeSVGFile(path string, chart *treemap.Chart) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating svg: %w", err)
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing svg: %w", cerr)
		}
	}()

	return treemap.WriteSVG(f, chart)
}

func logic(ctx context.Context, cfg *config.Config, path string, stdout, stderr io.Writer) error {
	jsonOutput := cfg.Output.Format == "json"

	enableProgress := !jsonOutput &&
		!cfg.Logging.Debug &&
		isTerminal(stderr)

	options, err := scanOptions(cfg, path, stderr)
	if err != nil {
		return err
	}

	var hooks dirmap.Hooks

	clearProgress := func() {}

	if enableProgress {
		hooks, clearProgress = newProgressBar(stderr)
	}

	result, err := dirmap.Run(ctx, options, hooks)

	// Clear the status line
	clearProgress()

	if err != nil {
		return err
	}

	if jsonOutput {
		if err := PrintJSON(result, stdout); err != nil {
			return err
		}

		if cfg.Chart.SVG == "" {
			return nil
		}

		return renderChart(result, cfg, stdout, stderr, false)
	}

	if err := PrintTable(result, stdout); err != nil {
		return err
	}

	return renderChart(result, cfg, stdout, stdout, cfg.Chart.Terminal && isTerminal(stdout))
}
