package report

import (
	"bytes"
	"strings"
	"testing"

	"neurocv/internal/dataset"
	"neurocv/internal/metrics"
	"neurocv/internal/pipeline"
)

func sampleReport() *pipeline.Report {
	defined := func(v float64) pipeline.Metric { return pipeline.Metric{Value: v, Defined: true} }

	r := &pipeline.Report{
		RunID: "test-run",
		Folds: []pipeline.FoldResult{
			{
				Index:            1,
				TrainSize:        90,
				TestSize:         10,
				Confusion:        metrics.ConfusionMatrix{TN: 4, FP: 1, FN: 1, TP: 4},
				Accuracy:         defined(0.8),
				BalancedAccuracy: defined(0.8),
				Sensitivity:      defined(0.8),
				Specificity:      defined(0.8),
			},
			{
				Index:       2,
				TrainSize:   90,
				TestSize:    10,
				Confusion:   metrics.ConfusionMatrix{TN: 9, FP: 1},
				Accuracy:    defined(0.9),
				Specificity: defined(0.9),
				// Sensitivity and balanced accuracy undefined: no positives.
			},
		},
	}
	r.Accuracy = pipeline.Aggregate{Summary: metrics.Summarize([]float64{0.8, 0.9})}
	r.BalancedAccuracy = pipeline.Aggregate{Summary: metrics.Summarize([]float64{0.8}), Undefined: 1}
	r.Sensitivity = pipeline.Aggregate{Summary: metrics.Summarize([]float64{0.8}), Undefined: 1}
	r.Specificity = pipeline.Aggregate{Summary: metrics.Summarize([]float64{0.8, 0.9})}
	return r
}

func TestWriteFoldBlocks(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"CV iteration: 1",
		"Training set size: 90",
		"Test set size: 10",
		"[[4 1]\n [1 4]]",
		"Accuracy: 0.800",
		"CV iteration: 2",
		"Sensitivity: undefined",
		"Balanced accuracy: undefined",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}
}

func TestWriteAggregates(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"CV results",
		"Acc: Mean(SD) = 0.850(0.050)",
		"Sens: Mean(SD) = 0.800(0.000) [undefined in 1 of 2 folds]",
		"Spec: Mean(SD) = 0.850(0.050)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}

	// Undefined folds are flagged, never silently blended into a mean.
	if strings.Contains(out, "NaN") {
		t.Errorf("output contains NaN:\n%s", out)
	}
}

func TestWriteCrossTab(t *testing.T) {
	ct := &dataset.CrossTab{
		Covariate: "Sex",
		Values:    []string{"F", "M"},
		Counts: map[int]map[string]int{
			0: {"F": 10, "M": 20},
			1: {"F": 5, "M": 25},
		},
	}

	var buf bytes.Buffer
	err := WriteCrossTab(&buf, ct, map[int]string{0: "control", 1: "patient"})
	if err != nil {
		t.Fatalf("WriteCrossTab failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Counts by label and Sex",
		"control",
		"patient",
		"25",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}

	// The largest cell gets the longest bar.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	longest, longestLine := 0, ""
	for _, line := range lines[1:] {
		n := strings.Count(line, "#")
		if n > longest {
			longest = n
			longestLine = line
		}
	}
	if !strings.Contains(longestLine, "25") {
		t.Errorf("longest bar is not the largest count:\n%s", out)
	}
}
