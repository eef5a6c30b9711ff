// Command route prints the generated route for an identifier.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"runpal/internal/render"
	"runpal/internal/route"
)

var formats = []string{"json", "svg", "png", "geojson"}

type options struct {
	format  string
	out     string
	minimal bool
	width   int
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "route <identifier>",
		Short: "Generate the decorative route for a run identifier",
		Long: `Generates the deterministic route path for an identifier and writes it
as JSON, SVG, PNG or GeoJSON. The same identifier always yields the same route.

Example:
  route 1 --format svg --out run-1.svg`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json, svg, png or geojson")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.minimal, "minimal", false, "render the thumbnail variant")
	cmd.Flags().IntVar(&opts.width, "width", render.DefaultPNGWidth, "png width in pixels")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func runRoute(cmd *cobra.Command, opts *options, identifier string) error {
	if !slices.Contains(formats, opts.format) {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	logger := zap.NewNop()
	if opts.verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer f.Close()
		w = f
	}

	path := route.Generate(identifier)
	logger.Debug("route generated",
		zap.String("identifier", identifier),
		zap.Int("seed", route.Seed(identifier)),
		zap.Int("segments", path.Segments()))

	if err := write(w, path, identifier, opts); err != nil {
		return err
	}
	if opts.out != "" {
		logger.Info("wrote route", zap.String("file", opts.out), zap.String("format", opts.format))
	}
	return nil
}

func write(w io.Writer, path route.PathResult, identifier string, opts *options) error {
	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(path)
	case "svg":
		return render.SVG(w, path, render.SVGOptions{DefsID: "route", Minimal: opts.minimal, Standalone: true})
	case "png":
		return render.PNG(w, path, render.PNGOptions{Width: opts.width, Minimal: opts.minimal})
	case "geojson":
		data, err := render.GeoJSON(path, identifier)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}
