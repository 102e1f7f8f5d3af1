package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"edaqa/internal/dataset"
)

var (
	headRows   int
	sampleRows int
	sampleSeed int64
)

var headCmd = &cobra.Command{
	Use:   "head [file]",
	Short: "Print the first N rows of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}

		n := headRows
		if n > ds.NumRows() {
			n = ds.NumRows()
		}

		fmt.Printf("\nFirst %d rows: %s\n\n", n, args[0])
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		printRows(ds, indices)
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample [file]",
	Short: "Print a random sample of N rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}

		n := sampleRows
		if n > ds.NumRows() {
			n = ds.NumRows()
		}

		rng := rand.New(rand.NewSource(sampleSeed))
		if !cmd.Flags().Changed("seed") {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		indices := rng.Perm(ds.NumRows())[:n]

		fmt.Printf("\nRandom sample (%d rows): %s\n\n", n, args[0])
		printRows(ds, indices)
		return nil
	},
}

func printRows(ds *dataset.Dataset, indices []int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(ds.ColumnNames(), "\t"))
	for _, i := range indices {
		fmt.Fprintln(w, strings.Join(ds.Row(i), "\t"))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(headCmd)
	rootCmd.AddCommand(sampleCmd)

	headCmd.Flags().IntVarP(&headRows, "n", "n", 5, "number of rows")
	sampleCmd.Flags().IntVarP(&sampleRows, "n", "n", 5, "number of rows")
	sampleCmd.Flags().Int64Var(&sampleSeed, "seed", 0, "seed for reproducible sampling")
}
