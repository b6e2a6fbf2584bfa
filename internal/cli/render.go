package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cadlayout/pkg/config"
	"github.com/matzehuels/cadlayout/pkg/dispatch"
	"github.com/matzehuels/cadlayout/pkg/export"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/pipeline"
)

// stdinName is the display name of a drawing read from standard input.
const stdinName = "stdin"

// renderFlags holds flag values for the render command. Layout flags only
// override the config file when set explicitly.
type renderFlags struct {
	output     string
	formats    string
	rotation   float64
	columns    int
	width      float64
	height     float64
	container  bool
	onlyIfFits bool
	sourceKind string
	reveal     bool
	noCache    bool
	refresh    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Lay out a drawing and export it next to the source",
		Long: `Load a DXF or YAML drawing, insert it into the canvas at its original size
and once per track, and write the result next to the source file.

Use "-" to read the drawing from standard input; the PNG then goes to
standard output unless --output is set.`,
		Example: `  cadlayout render bracket.dxf
  cadlayout render bracket.dxf --rotation 90 --container --reveal
  cadlayout render bracket.dxf -f png,yaml
  cat bracket.dxf | cadlayout render - > bracket.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)

			src, err := sourceFor(args[0], cfg.SourceKind, cmd.InOrStdin())
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			return c.render(cmd.Context(), runner, cfg, src, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: next to the source)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats: png, yaml (comma-separated)")
	cmd.Flags().Float64Var(&flags.rotation, "rotation", 0, "rotate the drawing clockwise by this many degrees")
	cmd.Flags().IntVar(&flags.columns, "columns", 0, "number of canvas columns")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "canvas height")
	cmd.Flags().BoolVar(&flags.container, "container", false, "draw the canvas outline")
	cmd.Flags().BoolVar(&flags.onlyIfFits, "only-if-fits", false, "insert the original only if it fits the canvas")
	cmd.Flags().StringVar(&flags.sourceKind, "source-kind", "", "read the drawing as a file path or as bytes (file|bytes)")
	cmd.Flags().BoolVar(&flags.reveal, "reveal", false, "open the output folder after exporting")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even if a cached result exists")

	return cmd
}

// apply copies explicitly set flags over cfg.
func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("rotation") {
		cfg.Rotation = f.rotation
	}
	if changed("columns") {
		cfg.Columns = f.columns
	}
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("container") {
		cfg.DrawContainer = f.container
	}
	if changed("only-if-fits") {
		cfg.ShowOriginalOnlyIfFits = f.onlyIfFits
	}
	if changed("source-kind") {
		cfg.SourceKind = f.sourceKind
	}
	if changed("reveal") {
		cfg.Reveal = f.reveal
	}
}

// sourceFor resolves the command argument. "-" reads stdin into memory.
func sourceFor(arg, kind string, stdin io.Reader) (loader.Source, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return loader.Source{}, fmt.Errorf("read stdin: %w", err)
		}
		return loader.BytesSource(stdinName, data), nil
	}

	k, err := loader.ParseSourceKind(kind)
	if err != nil {
		return loader.Source{}, err
	}
	if k == loader.SourceBytes {
		data, err := loader.FileSource(arg).Bytes()
		if err != nil {
			return loader.Source{}, err
		}
		return loader.BytesSource(arg, data), nil
	}
	return loader.FileSource(arg), nil
}

// render runs one redraw followed by one export per format on a dispatch
// loop, the same order an interactive session would use.
func (c *CLI) render(ctx context.Context, runner *pipeline.Runner, cfg config.Config, src loader.Source, flags renderFlags, stdout io.Writer) error {
	opts, err := pipeline.FromConfig(&cfg, src)
	if err != nil {
		return err
	}
	opts.Formats = parseFormats(flags.formats)
	opts.Strict = true
	opts.Refresh = flags.refresh
	opts.Logger = c.Logger
	if cfg.AutoDismissDialog {
		opts.Acknowledger = noticeDismisser{logger: c.Logger}
	}

	exporter := &export.Exporter{Reveal: cfg.Reveal, Logger: c.Logger}
	loop := dispatch.New(c.Logger)
	prog := newProgress(c.Logger)

	var (
		result   *pipeline.Result
		firstErr error
		written  []string
	)
	fail := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	redraw := func(ctx context.Context) error {
		r, err := runner.Execute(ctx, opts)
		result = r
		return err
	}
	exportFormat := func(format string) dispatch.Task {
		return func(ctx context.Context) error {
			data := result.Artifacts[format]
			if src.Kind == loader.SourceBytes && src.Path == stdinName && flags.output == "" {
				_, err := stdout.Write(data)
				return err
			}
			path := flags.output
			if path == "" || len(opts.Formats) > 1 {
				base := src.Path
				if flags.output != "" {
					base = flags.output
				}
				path = export.Path(base, format)
			}
			out, _, err := exporter.ExportTo(path, data)
			if err == nil {
				written = append(written, out)
			}
			return err
		}
	}

	err = loop.Post("redraw", redraw, func(err error) {
		if err != nil {
			fail(err)
			return
		}
		for _, format := range opts.Formats {
			fail(loop.Post("export:"+format, exportFormat(format), fail))
		}
	})
	if err != nil {
		return err
	}
	loop.Drain(ctx)
	loop.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if firstErr != nil {
		return firstErr
	}

	prog.done(fmt.Sprintf("Rendered %s", src.Name()))
	if len(written) > 0 {
		printSuccess("Exported %s", src.Name())
		printStats(result.Stats.Entities, result.Stats.Placements, result.CacheInfo.RenderHit)
		for _, path := range written {
			printFile(path)
		}
	}
	return nil
}

// noticeDismisser acknowledges engine notices without user interaction.
type noticeDismisser struct {
	logger *log.Logger
}

func (d noticeDismisser) Acknowledge(ctx context.Context) error {
	d.logger.Debug("engine notice dismissed")
	return ctx.Err()
}

var _ loader.Acknowledger = noticeDismisser{}
