package cli

import (
	"fmt"
	"strings"

	"github.com/phanxgames/glyphscape/dataset"
	"github.com/phanxgames/glyphscape/internal/ui"
	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	var (
		out       string
		compress  bool
		timestamp string
	)
	cmd := &cobra.Command{
		Use:   "process <file.csv>",
		Short: "Turn a CSV file into a dataset",
		Long: "Writes the schema, feature, meta and position files of a CSV file into the\n" +
			"data directory. Position files come from <name>-x/<name>-y column pairs and\n" +
			"longitude/latitude columns.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				out = cfg.Data.Dir
			}
			ui.Banner("process " + args[0])
			coll, err := dataset.ProcessCSV(args[0], out, dataset.ProcessOptions{
				Timestamp: timestamp,
				Compress:  compress,
			})
			if err != nil {
				return err
			}
			printCollection(coll)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default: [data] dir)")
	cmd.Flags().BoolVar(&compress, "zstd", false, "Write zstd compressed files")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Run name as ddmmyyyy (default: today)")
	return cmd
}

func discoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover [dir]",
		Short: "List the datasets in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.Data.Dir
			}
			coll, err := dataset.Discover(dir)
			if err != nil {
				return err
			}
			ui.Banner("datasets in " + dir)
			if len(coll) == 0 {
				fmt.Fprintf(ui.Out, "  %s no datasets found\n", ui.WarnIcon())
				return nil
			}
			printCollection(coll)
			return nil
		},
	}
}

// printCollection prints one row per dataset run.
func printCollection(coll dataset.Collection) {
	var rows [][]string
	for _, e := range coll {
		for _, it := range e.Items {
			layouts := strings.Join(it.Algorithms.Names(), ", ")
			if layouts == "" {
				layouts = ui.Warn.Sprint("none")
			}
			rows = append(rows, []string{e.Dataset, it.Time, layouts, e.Source})
		}
	}
	ui.Table([]string{"DATASET", "TIMESTAMP", "LAYOUTS", "SOURCE"}, rows)
}
