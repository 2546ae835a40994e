package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"neurocv/internal/dataset"
	"neurocv/internal/pipeline"
	"neurocv/internal/report"
)

var (
	runDataset string
	runFolds   int
	runSeed    int64
	runShuffle bool
	runWorkers int
)

// runCmd executes the full cross-validated evaluation
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cross-validated evaluation on the configured dataset",
	Long: `Loads the dataset, partitions it into stratified folds, and for each
fold fits a standardizer and linear classifier on the training partition and
scores the test partition. Prints one block per fold followed by the
cross-fold aggregates.

Example:
  neurocv run --folds 10 --seed 1`,
	RunE: runEvaluation,
}

func init() {
	runCmd.Flags().StringVar(&runDataset, "dataset", "", "dataset path or URL (overrides config)")
	runCmd.Flags().IntVar(&runFolds, "folds", 0, "cross-validation fold count (overrides config)")
	runCmd.Flags().Int64Var(&runSeed, "seed", -1, "random seed (overrides config)")
	runCmd.Flags().BoolVar(&runShuffle, "shuffle", true, "shuffle rows before stratification")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent fold workers (overrides config)")
}

func runEvaluation(cmd *cobra.Command, args []string) error {
	if runDataset != "" {
		cfg.Dataset.Source = runDataset
	}
	if runFolds > 0 {
		cfg.Evaluation.Folds = runFolds
	}
	if runSeed >= 0 {
		cfg.Evaluation.Seed = runSeed
	}
	if cmd.Flags().Changed("shuffle") {
		cfg.Evaluation.Shuffle = runShuffle
	}
	if runWorkers > 0 {
		cfg.Evaluation.Workers = runWorkers
	}

	ctx := cmd.Context()

	loader := &dataset.Loader{Logger: logger}
	table, err := loader.Load(ctx, cfg.Dataset.Source, dataset.Schema{
		IndexColumn:   cfg.Dataset.IndexColumn,
		LabelColumn:   cfg.Dataset.LabelColumn,
		FeatureOffset: cfg.Dataset.FeatureOffset,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Number of participants = %d\n", table.NumRows())
	fmt.Fprintf(out, "Number of features = %d\n", table.NumFeatures())

	ev := &pipeline.Evaluator{
		Folds:   cfg.Evaluation.Folds,
		Seed:    cfg.Evaluation.Seed,
		Shuffle: cfg.Evaluation.Shuffle,
		Workers: cfg.Evaluation.Workers,
		Logger:  logger,
	}
	res, err := ev.Run(ctx, table.Features(), table.Labels())
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		return err
	}

	return report.Write(out, res)
}
