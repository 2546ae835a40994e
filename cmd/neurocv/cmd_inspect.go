package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neurocv/internal/dataset"
	"neurocv/internal/report"
)

var inspectCovariate string

// inspectCmd summarizes the dataset for post-hoc confound inspection
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize the dataset and its class/covariate balance",
	Long: `Loads the dataset and prints sample size, feature count, class counts,
and a label-by-covariate contingency table for confound inspection (for
example, whether sex is distributed evenly across diagnosis groups).

Example:
  neurocv inspect --covariate Sex`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectCovariate, "covariate", "Sex", "covariate column to cross-tabulate against the label")
}

func runInspect(cmd *cobra.Command, args []string) error {
	loader := &dataset.Loader{Logger: logger}
	table, err := loader.Load(cmd.Context(), cfg.Dataset.Source, dataset.Schema{
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

	counts := table.ClassCounts()
	fmt.Fprintf(out, "%s counts: 0=%d 1=%d\n", cfg.Dataset.LabelColumn, counts[0], counts[1])

	ct, err := table.CrossTabulate(inspectCovariate)
	if err != nil {
		return err
	}
	return report.WriteCrossTab(out, ct, map[int]string{0: "control", 1: "patient"})
}
