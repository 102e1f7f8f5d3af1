package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"edaqa/internal/config"
	"edaqa/internal/dataset"
	"edaqa/internal/logging"
)

var (
	cfgFile string
	verbose bool
	sepFlag string
	encFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "edaqa",
	Short: "Exploratory data analysis and quality scoring CLI",
	Long: `edaqa profiles delimited text files: descriptive statistics,
heuristic data-quality scoring, Markdown reports with charts,
and an HTTP service exposing the same quality engine.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("verbose") {
			cfg.Verbose = verbose
		}
		if cmd.Flags().Changed("sep") {
			cfg.Sep = sepFlag
		}
		if cmd.Flags().Changed("encoding") {
			cfg.Encoding = encFlag
		}
		return logging.Init(cfg.Verbose, cfg.LogDir)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./.edaqa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&sepFlag, "sep", "s", ",",
		"field separator")
	rootCmd.PersistentFlags().StringVarP(&encFlag, "encoding", "e", "utf-8",
		"source text encoding")
}

// loadDataset opens the given file with the effective separator and encoding.
func loadDataset(path string) (*dataset.Dataset, error) {
	ds, err := dataset.Load(path, cfg.SepRune(), cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}
