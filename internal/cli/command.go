package cli

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dirmap/internal/config"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// flags holds the raw command-line values before they are merged onto the config.
type flags struct {
	configPath  string
	writeConfig string
	excludes    []string
	ignores     []string
	minSize     string
	workers     int
	failFast    bool
	output      string
	noChart     bool
	svg         string
	columns     int
	rows        int
	legendLimit int
	colors      string
	debug       bool
}

// register binds the flags, using the defaults for their initial values.
func (f *flags) register(set *pflag.FlagSet) {
	defaults := config.DefaultConfig()

	set.StringVarP(&f.configPath, "config", "c", "", "Config file (default: ./"+config.FileName+" if present)")
	set.StringVar(&f.writeConfig, "write-config", "", "Write the effective configuration to this file and exit")
	set.StringSliceVarP(&f.excludes, "exclude", "e", defaults.Scan.Excludes, "Regex patterns to exclude")
	set.StringSliceVarP(&f.ignores, "ignore", "g", defaults.Scan.Ignores, "Glob patterns to ignore (e.g., '**/*.log')")
	set.StringVar(&f.minSize, "min-size", defaults.Scan.MinSize, "Minimum file size (e.g., 1KB)")
	set.IntVarP(&f.workers, "workers", "w", defaults.Scan.Workers, "Concurrent traversal tasks (0=GOMAXPROCS)")
	set.BoolVar(&f.failFast, "fail-fast", defaults.Scan.FailFast, "Abort on the first unreadable file instead of skipping it")
	set.StringVarP(&f.output, "output", "o", defaults.Output.Format, "Output format: json or table")
	set.BoolVar(&f.noChart, "no-chart", !defaults.Chart.Terminal, "Do not draw the treemap in the terminal")
	set.StringVar(&f.svg, "svg", defaults.Chart.SVG, "Write the treemap as SVG to this file")
	set.IntVar(&f.columns, "columns", defaults.Chart.Columns, "Terminal treemap width in cells")
	set.IntVar(&f.rows, "rows", defaults.Chart.Rows, "Terminal treemap height in cells")
	set.IntVar(&f.legendLimit, "legend-limit", defaults.Chart.LegendLimit, "Maximum legend entries (0=unlimited)")
	set.StringVar(&f.colors, "colors", defaults.Chart.Colors, "Group color assignment: order or hash")
	set.BoolVar(&f.debug, "debug", defaults.Logging.Debug, "Enable debug output")

	set.SortFlags = false
}

// apply overrides cfg with every flag that was set explicitly.
//
//nolint:cyclop // One branch per flag.
func (f *flags) apply(set *pflag.FlagSet, cfg *config.Config) {
	changed := set.Changed

	if changed("exclude") {
		cfg.Scan.Excludes = f.excludes
	}

	if changed("ignore") {
		cfg.Scan.Ignores = f.ignores
	}

	if changed("min-size") {
		cfg.Scan.MinSize = f.minSize
	}

	if changed("workers") {
		cfg.Scan.Workers = f.workers
	}

	if changed("fail-fast") {
		cfg.Scan.FailFast = f.failFast
	}

	if changed("output") {
		cfg.Output.Format = f.output
	}

	if changed("no-chart") {
		cfg.Chart.Terminal = !f.noChart
	}

	if changed("svg") {
		cfg.Chart.SVG = f.svg
	}

	if changed("columns") {
		cfg.Chart.Columns = f.columns
	}

	if changed("rows") {
		cfg.Chart.Rows = f.rows
	}

	if changed("legend-limit") {
		cfg.Chart.LegendLimit = f.legendLimit
	}

	if changed("colors") {
		cfg.Chart.Colors = f.colors
	}

	if changed("debug") {
		cfg.Logging.Debug = f.debug
	}
}

// loadConfig reads the config file named by the flags, or ./dirmap.yaml.
func (f *flags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.Load(f.configPath)
	}

	return config.LoadFromDir(".")
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "dirmap [flags] [path]",
		Short: "Map where the bytes of a directory tree live",
		Long: heredoc.Doc(`
			dirmap sums file sizes under a directory, grouped by top-level folder,
			and draws them as a treemap with a colored legend.

			Every top-level folder is walked by its own task; files directly in the
			root are measured as well. Unreadable files are skipped and reported
			unless --fail-fast is given.

			Settings are read from ./dirmap.yaml (or --config) and overridden by flags.
		`),
		Example: heredoc.Doc(`
			dirmap ~/Videos
			dirmap --svg usage.svg --no-chart .
			dirmap -o json --ignore '**/*.tmp' /var/log
			dirmap --workers 4 --write-config dirmap.yaml
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.loadConfig()
			if err != nil {
				return err
			}

			f.apply(cmd.Flags(), cfg)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if f.writeConfig != "" {
				if err := cfg.Save(f.writeConfig); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", f.writeConfig) //nolint:forbidigo // Console output

				return nil
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return logic(cmd.Context(), cfg, path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f.register(cmd.Flags())

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute(ctx context.Context) error {
	return fang.Execute(ctx, c.Command())
}
