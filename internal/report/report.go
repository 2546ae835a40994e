// Package report renders evaluation results as plain text, matching the
// fold-by-fold output shape of the original tutorial pipeline.
package report

import (
	"fmt"
	"io"
	"strings"

	"neurocv/internal/dataset"
	"neurocv/internal/pipeline"
)

const divider = "--------------------------------------------------------------------------"

// Write renders the full evaluation report: one block per fold in fold
// order, then the cross-fold aggregates.
func Write(w io.Writer, r *pipeline.Report) error {
	for _, f := range r.Folds {
		if err := writeFold(w, f); err != nil {
			return err
		}
	}
	return writeAggregates(w, r)
}

func writeFold(w io.Writer, f pipeline.FoldResult) error {
	cm := f.Confusion
	_, err := fmt.Fprintf(w, `CV iteration: %d
Training set size: %d
Test set size: %d
Confusion matrix
[[%d %d]
 [%d %d]]
Accuracy: %s
Balanced accuracy: %s
Sensitivity: %s
Specificity: %s
%s
`, f.Index, f.TrainSize, f.TestSize,
		cm.TN, cm.FP, cm.FN, cm.TP,
		formatMetric(f.Accuracy),
		formatMetric(f.BalancedAccuracy),
		formatMetric(f.Sensitivity),
		formatMetric(f.Specificity),
		divider)
	return err
}

func writeAggregates(w io.Writer, r *pipeline.Report) error {
	if _, err := fmt.Fprintln(w, "CV results"); err != nil {
		return err
	}
	rows := []struct {
		name string
		agg  pipeline.Aggregate
	}{
		{"Acc", r.Accuracy},
		{"Bac", r.BalancedAccuracy},
		{"Sens", r.Sensitivity},
		{"Spec", r.Specificity},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row.name, formatAggregate(row.agg)); err != nil {
			return err
		}
	}
	return nil
}

func formatMetric(m pipeline.Metric) string {
	if !m.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.3f", m.Value)
}

func formatAggregate(a pipeline.Aggregate) string {
	if a.Summary.N == 0 {
		return "undefined in all folds"
	}
	s := fmt.Sprintf("Mean(SD) = %.3f(%.3f)", a.Summary.Mean, a.Summary.SD)
	if a.Undefined > 0 {
		s += fmt.Sprintf(" [undefined in %d of %d folds]", a.Undefined, a.Summary.N+a.Undefined)
	}
	return s
}

// WriteCrossTab renders a label x covariate contingency table with text
// bars, the batch equivalent of the tutorial's countplot for confound
// inspection.
func WriteCrossTab(w io.Writer, ct *dataset.CrossTab, labelNames map[int]string) error {
	if _, err := fmt.Fprintf(w, "Counts by label and %s\n", ct.Covariate); err != nil {
		return err
	}

	max := 0
	for _, byValue := range ct.Counts {
		for _, n := range byValue {
			if n > max {
				max = n
			}
		}
	}

	for _, label := range []int{0, 1} {
		name := labelNames[label]
		if name == "" {
			name = fmt.Sprintf("%d", label)
		}
		for _, v := range ct.Values {
			n := ct.Counts[label][v]
			if _, err := fmt.Fprintf(w, "%-10s %-8s %4d %s\n", name, v, n, bar(n, max)); err != nil {
				return err
			}
		}
	}
	return nil
}

func bar(n, max int) string {
	if max == 0 {
		return ""
	}
	const width = 40
	filled := n * width / max
	return strings.Repeat("#", filled)
}
