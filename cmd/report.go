package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"edaqa/internal/quality"
	"edaqa/internal/report"
	"edaqa/internal/summary"
	"edaqa/internal/viz"
)

var (
	reportOutDir      string
	reportTitle       string
	maxHistColumns    int
	topKCategories    int
	minMissingShare   float64
	jsonSummary       bool
	missingThreshold  float64
	highCardThreshold int
	zeroThreshold     float64
	noCharts          bool
)

var reportCmd = &cobra.Command{
	Use:   "report [file]",
	Short: "Generate a full Markdown report with charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}

		opts := engineOptions(cmd)
		rep, err := quality.Evaluate(ds, opts)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(reportOutDir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", reportOutDir, err)
		}

		sum := summary.Summarize(ds, topKCategories)
		problematic := quality.RankProblematic(ds, minMissingShare)

		params := report.Params{
			Title:           reportTitle,
			SourcePath:      args[0],
			Summary:         sum,
			Quality:         rep,
			Problematic:     problematic,
			MinMissingShare: minMissingShare,
			TopKCategories:  topKCategories,
			MaxHistColumns:  maxHistColumns,
		}

		if !noCharts {
			if hists, err := viz.SaveHistograms(ds, reportOutDir, maxHistColumns); err != nil {
				return err
			} else if len(hists) > 0 {
				params.HistogramsChart = filepath.Base(hists[0])
			}
			if p, err := viz.SaveMissingBar(ds, reportOutDir); err != nil {
				return err
			} else if p != "" {
				params.MissingChart = filepath.Base(p)
			}
			if p, err := viz.SaveQuartiles(ds, reportOutDir, maxHistColumns); err != nil {
				return err
			} else if p != "" {
				params.BoxplotsChart = filepath.Base(p)
			}
			if cats := sum.Categorical.CategoricalColumns; len(cats) > 0 {
				if p, err := viz.SaveCategoryBar(ds, cats[0], reportOutDir, topKCategories); err != nil {
					return err
				} else if p != "" {
					params.CategoryChart = filepath.Base(p)
				}
			}
		}

		reportPath := filepath.Join(reportOutDir, "report.md")
		if err := os.WriteFile(reportPath, []byte(report.Compose(params)), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("Report saved: %s\n", reportPath)

		if jsonSummary {
			data, err := json.MarshalIndent(report.BuildSummary(params), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal summary: %w", err)
			}
			summaryPath := filepath.Join(reportOutDir, "summary.json")
			if err := os.WriteFile(summaryPath, data, 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			fmt.Printf("JSON summary: %s\n", summaryPath)
		}

		return nil
	},
}

// engineOptions builds evaluation thresholds: config defaults, overridden by
// explicitly set flags.
func engineOptions(cmd *cobra.Command) quality.Options {
	opts := quality.Options{
		MissingThreshold:         cfg.MissingThreshold,
		HighCardinalityThreshold: cfg.HighCardinalityThreshold,
		ZeroThreshold:            cfg.ZeroThreshold,
	}
	if cmd.Flags().Changed("missing-threshold") {
		opts.MissingThreshold = missingThreshold
	}
	if cmd.Flags().Changed("high-cardinality-threshold") {
		opts.HighCardinalityThreshold = highCardThreshold
	}
	if cmd.Flags().Changed("zero-threshold") {
		opts.ZeroThreshold = zeroThreshold
	}
	return opts
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutDir, "out-dir", "o", "reports",
		"output directory for the report")
	reportCmd.Flags().StringVarP(&reportTitle, "title", "t", "EDA Report",
		"report title")
	reportCmd.Flags().IntVar(&maxHistColumns, "max-hist-columns", 6,
		"maximum numeric columns to chart")
	reportCmd.Flags().IntVar(&topKCategories, "top-k-categories", 5,
		"top-K values per categorical column")
	reportCmd.Flags().Float64Var(&minMissingShare, "min-missing-share", 0.1,
		"missing share at which a column is listed as problematic")
	reportCmd.Flags().BoolVar(&jsonSummary, "json-summary", false,
		"also write summary.json")
	reportCmd.Flags().BoolVar(&noCharts, "no-charts", false,
		"skip chart rendering")
	reportCmd.Flags().Float64Var(&missingThreshold, "missing-threshold", 0.3,
		"missing share above which a column is flagged")
	reportCmd.Flags().IntVar(&highCardThreshold, "high-cardinality-threshold", 50,
		"distinct value count above which a categorical column is flagged")
	reportCmd.Flags().Float64Var(&zeroThreshold, "zero-threshold", 0.5,
		"zero share above which a numeric column is flagged")
}
