package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"edaqa/internal/connectors"
	"edaqa/internal/quality"
)

var (
	scanDir       string
	scanFormat    string
	scanRecursive bool
	scanWorkers   int
	scanMinSize   int64
	scanMaxSize   int64
)

type scanResult struct {
	meta   connectors.FileMeta
	rows   int
	cols   int
	report *quality.Report
	err    error
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Score every delimited file in a directory",
	Long: `Scan a directory for delimited files and run the quality engine
over each one, printing a per-file score summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		options := connectors.DiscoveryOptions{
			Recursive: scanRecursive,
			MinSize:   scanMinSize,
			MaxSize:   scanMaxSize,
		}

		files, err := connectors.DiscoverFiles(scanDir, scanFormat, options)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Scoring files..."),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)

		opts := engineOptions(cmd)
		results := scanFiles(files, opts, bar)

		fmt.Printf("\n%-40s %10s %10s %8s %s\n", "File", "Size", "Rows", "Score", "Flags")
		fmt.Println(strings.Repeat("-", 90))
		for _, res := range results {
			name := res.meta.Path
			if len(name) > 37 {
				name = "..." + name[len(name)-34:]
			}
			if res.err != nil {
				fmt.Printf("%-40s %10s %10s %8s %s\n",
					name, humanize.Bytes(uint64(res.meta.Size)), "-", "-", res.err)
				continue
			}
			fmt.Printf("%-40s %10s %10d %7d%% %s\n",
				name, humanize.Bytes(uint64(res.meta.Size)),
				res.rows, res.report.QualityScore, flagSummary(res.report))
		}

		return nil
	},
}

// scanFiles evaluates files concurrently under a bounded worker pool and
// returns results in discovery order.
func scanFiles(files []connectors.FileMeta, opts quality.Options, bar *progressbar.ProgressBar) []scanResult {
	workers := scanWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sem := make(chan struct{}, workers)
	out := make(chan scanResult, len(files))

	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(meta connectors.FileMeta) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := scanResult{meta: meta}
			ds, err := loadDataset(meta.Path)
			if err != nil {
				res.err = err
			} else {
				res.rows = ds.NumRows()
				res.cols = ds.NumCols()
				res.report, res.err = quality.Evaluate(ds, opts)
			}
			bar.Add(1)
			out <- res
		}(f)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	order := make(map[string]int, len(files))
	for i, f := range files {
		order[f.Path] = i
	}

	var results []scanResult
	for res := range out {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return order[results[i].meta.Path] < order[results[j].meta.Path]
	})
	return results
}

func flagSummary(rep *quality.Report) string {
	var parts []string
	if rep.HasHighMissing {
		parts = append(parts, "missing")
	}
	if rep.HasDuplicates {
		parts = append(parts, fmt.Sprintf("dups(%d)", rep.DuplicateCount))
	}
	if rep.HasConstantColumns {
		parts = append(parts, "constant")
	}
	if rep.HasHighCardinalityCategoricals {
		parts = append(parts, "high-card")
	}
	if rep.HasManyZeroValues {
		parts = append(parts, "zeros")
	}
	if len(parts) == 0 {
		return "clean"
	}
	return strings.Join(parts, ",")
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanDir, "dir", "d", "",
		"directory to scan (required)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "csv",
		"file extension to analyze")
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false,
		"search directories recursively")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"number of parallel workers (default: CPU cores)")
	scanCmd.Flags().Int64Var(&scanMinSize, "min-size", 0,
		"minimum file size in bytes")
	scanCmd.Flags().Int64Var(&scanMaxSize, "max-size", 0,
		"maximum file size in bytes")
	scanCmd.Flags().Float64Var(&missingThreshold, "missing-threshold", 0.3,
		"missing share above which a column is flagged")
	scanCmd.Flags().IntVar(&highCardThreshold, "high-cardinality-threshold", 50,
		"distinct value count above which a categorical column is flagged")
	scanCmd.Flags().Float64Var(&zeroThreshold, "zero-threshold", 0.5,
		"zero share above which a numeric column is flagged")

	scanCmd.MarkFlagRequired("dir")
}
