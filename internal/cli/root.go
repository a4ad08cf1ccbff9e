package cli

import (
	"github.com/phanxgames/glyphscape/internal/config"
	"github.com/phanxgames/glyphscape/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var configFile string

// loadConfig reads --config when given, the user config otherwise.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load(), nil
}

// NewRootCmd builds the glyphview command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "glyphview",
		Short: "Explore multivariate data as glyphs",
		Long: ui.Brand.Sprint("glyphview") + ": explore multivariate data as glyphs\n" +
			ui.Subtle.Sprint("Process CSV files into datasets and browse them side by side"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("glyphview {{ .Version }}\n")
	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default "+config.Path()+")")

	root.AddCommand(
		viewCmd(),
		processCmd(),
		discoverCmd(),
		exportCmd(),
		configCmd(),
	)
	return root
}

// Execute runs the root command and prints a failure in the palette.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		ui.Bad.Fprintf(ui.Out, "glyphview: %v\n", err)
	}
	return err
}
