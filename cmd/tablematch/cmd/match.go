package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tablematch/tablematch"
	"github.com/tablematch/tablematch/internal/config"
	"github.com/tablematch/tablematch/internal/export"
	"github.com/tablematch/tablematch/internal/loader"
	"github.com/tablematch/tablematch/pkg/logging"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a candidate table against a position table",
	Long: `Match loads both tables and the mapping document, runs the
reconciliation, and prints a summary. With --output the full report is
written as an Excel workbook.`,
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("positions", "", "position table file (.xlsx, .xlsm, or .csv)")
	matchCmd.Flags().String("candidates", "", "candidate table file (.xlsx, .xlsm, or .csv)")
	matchCmd.Flags().String("mapping", "", "YAML mapping document")
	matchCmd.Flags().String("output", "", "write the full report to this .xlsx path")
	matchCmd.Flags().String("positions-sheet", "", "worksheet name for the position table (default: first sheet)")
	matchCmd.Flags().String("candidates-sheet", "", "worksheet name for the candidate table (default: first sheet)")
	matchCmd.Flags().Int("workers", 0, "worker goroutines (default: GOMAXPROCS)")
	matchCmd.Flags().Float64("fuzzy-threshold", 0, "override the mapping's fuzzy similarity threshold")
	matchCmd.Flags().Float64("tie-epsilon", -1, "override the mapping's tie epsilon")

	_ = matchCmd.MarkFlagRequired("positions")
	_ = matchCmd.MarkFlagRequired("candidates")
	_ = matchCmd.MarkFlagRequired("mapping")

	for _, flag := range []string{"workers", "fuzzy-threshold", "tie-epsilon"} {
		if err := viper.BindPFlag(flag, matchCmd.Flags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := logging.Default()
	ctx = logging.WithLogger(ctx, logger)

	mappingPath, _ := cmd.Flags().GetString("mapping")
	mapping, err := config.LoadMapping(mappingPath)
	if err != nil {
		return err
	}

	positionsPath, _ := cmd.Flags().GetString("positions")
	positionsSheet, _ := cmd.Flags().GetString("positions-sheet")
	positions, err := loader.Load(positionsPath, positionsSheet)
	if err != nil {
		return err
	}

	candidatesPath, _ := cmd.Flags().GetString("candidates")
	candidatesSheet, _ := cmd.Flags().GetString("candidates-sheet")
	candidates, err := loader.Load(candidatesPath, candidatesSheet)
	if err != nil {
		return err
	}

	settings := config.LoadSettings()
	opts := []tablematch.Option{tablematch.WithLogger(logger)}
	if settings.Workers > 0 {
		opts = append(opts, tablematch.WithWorkers(settings.Workers))
	}
	if settings.PartitionSize > 0 {
		opts = append(opts, tablematch.WithPartitionSize(settings.PartitionSize))
	}
	if v := viper.GetFloat64("fuzzy-threshold"); v > 0 {
		opts = append(opts, tablematch.WithFuzzyThreshold(v))
	}
	if v := viper.GetFloat64("tie-epsilon"); v >= 0 {
		opts = append(opts, tablematch.WithTieEpsilon(v))
	}

	rep, err := tablematch.Match(ctx, positions, candidates, mapping, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), rep.Summary())
	for _, p := range rep.Partitions {
		if p.Error != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", p.Error)
		}
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := export.WriteXLSX(rep, mapping, output); err != nil {
			return err
		}
		logger.Info().Str("path", output).Msg("Report written")
	}
	return nil
}
