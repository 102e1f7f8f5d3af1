package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"edaqa/internal/summary"
)

var overviewCmd = &cobra.Command{
	Use:   "overview [file]",
	Short: "Quick dataset overview: shape, types, missing values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}

		stats := summary.Basic(ds)
		missing := summary.Missing(ds)

		fmt.Printf("\nDataset overview: %s\n\n", args[0])

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Rows\t%d\n", stats.NumRows)
		fmt.Fprintf(w, "Columns\t%d\n", stats.NumCols)
		fmt.Fprintf(w, "Memory (MB)\t%.3f\n", stats.MemoryMB)
		fmt.Fprintf(w, "Total missing\t%d\n", missing.TotalMissing)
		fmt.Fprintf(w, "Columns with missing\t%d\n", missing.ColumnsWithMissing)
		w.Flush()

		fmt.Println("\nColumn types:")
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, name := range stats.Columns {
			fmt.Fprintf(w, "  %s\t%s\n", name, stats.DTypes[name])
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}
