package cli

import (
	"context"
	"fmt"

	"github.com/phanxgames/glyphscape"
	"github.com/phanxgames/glyphscape/internal/config"
	"github.com/phanxgames/glyphscape/internal/ui"
	"github.com/spf13/cobra"
)

type viewFlags struct {
	dataset   string
	timestamp string
	canvases  int
	glyph     string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "Dataset to show (default: first in the data directory)")
	cmd.Flags().StringVar(&f.timestamp, "timestamp", "", "Processing run to show (default: first)")
	cmd.Flags().IntVar(&f.canvases, "canvases", 0, "Number of side-by-side canvases")
	cmd.Flags().StringVar(&f.glyph, "glyph", "", "Glyph type: star, flower, whisker, thumbnail")
}

// apply overrides the config with the flags that were set.
func (f *viewFlags) apply(cfg *config.Config) {
	if f.dataset != "" {
		cfg.Data.Dataset = f.dataset
	}
	if f.timestamp != "" {
		cfg.Data.Timestamp = f.timestamp
	}
	if f.canvases > 0 {
		cfg.Window.Canvases = f.canvases
	}
	if f.glyph != "" {
		cfg.Glyph.Type = f.glyph
	}
}

// prepare loads the config and the dataset and builds the app. The
// returned close function releases the data session.
func (f *viewFlags) prepare(ctx context.Context) (*config.Config, *glyphscape.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	f.apply(cfg)
	if _, err := glyphscape.ParseGlyphType(cfg.Glyph.Type); err != nil {
		return nil, nil, nil, err
	}

	s, err := openSession(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	ds, err := s.load(ctx, cfg.Data.Dataset, cfg.Data.Timestamp)
	if err != nil {
		s.close()
		return nil, nil, nil, err
	}
	app, err := newApp(cfg, s, ds)
	if err != nil {
		s.close()
		return nil, nil, nil, fmt.Errorf("%s/%s: %w", ds.Name, ds.Timestamp, err)
	}
	fmt.Fprintf(ui.Out, "  %s %s %s %s\n", ui.StatusIcon(true), ds.Name,
		ui.Subtle.Sprint(ds.Timestamp), ui.Subtle.Sprintf("(%d glyphs, %v)", len(ds.Glyphs), ds.Algorithms))
	return cfg, app, s.close, nil
}

func viewCmd() *cobra.Command {
	var flags viewFlags
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a dataset in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, app, done, err := flags.prepare(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			return glyphscape.Run(app, cfg.RunConfig())
		},
	}
	flags.register(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		flags  viewFlags
		out    string
		settle int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a dataset to PNG files and exit",
		Long: "Opens the view, waits for the layout to settle, writes one PNG per canvas\n" +
			"and quits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, app, done, err := flags.prepare(cmd.Context())
			if err != nil {
				return err
			}
			defer done()
			if out == "" {
				out = cfg.Export.Dir
			}
			script, err := exportScript(out, settle)
			if err != nil {
				return err
			}
			app.RunScript(script, true)
			if err := glyphscape.Run(app, cfg.RunConfig()); err != nil {
				return err
			}
			for _, c := range app.Canvases() {
				fmt.Fprintf(ui.Out, "  %s %s\n", ui.StatusIcon(true), c.ExportPath(out))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default: [export] dir)")
	cmd.Flags().IntVar(&settle, "frames", 40, "Frames to wait before exporting")
	return cmd
}
