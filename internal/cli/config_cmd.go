package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/phanxgames/glyphscape/internal/config"
	"github.com/phanxgames/glyphscape/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return toml.NewEncoder(ui.Out).Encode(cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration if none exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := config.EnsureExists(); err != nil {
					return err
				}
				fmt.Fprintf(ui.Out, "  %s %s\n", ui.StatusIcon(true), config.Path())
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(ui.Out, config.Path())
			},
		},
	)
	return cmd
}
