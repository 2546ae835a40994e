package pipeline

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// syntheticDataset builds a balanced two-cluster dataset: 100 rows, 10
// features, labels alternating 50/50, with class-dependent offsets so a
// linear separator exists.
func syntheticDataset(t *testing.T) (*mat.Dense, []int) {
	t.Helper()
	const n, m = 100, 10

	rng := rand.New(rand.NewSource(99))
	x := mat.NewDense(n, m, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		offset := -1.5
		if i%2 == 0 {
			offset = 1.5
			y[i] = 1
		}
		for j := 0; j < m; j++ {
			x.Set(i, j, offset+rng.NormFloat64())
		}
	}
	return x, y
}

func TestRunEndToEnd(t *testing.T) {
	x, y := syntheticDataset(t)

	ev := &Evaluator{Folds: 10, Seed: 1, Shuffle: true}
	rep, err := ev.Run(context.Background(), x, y)
	require.NoError(t, err)
	require.Len(t, rep.Folds, 10)
	require.NotEmpty(t, rep.RunID)

	for _, f := range rep.Folds {
		assert.Equal(t, 90, f.TrainSize)
		assert.Equal(t, 10, f.TestSize)
		assert.Equal(t, f.TestSize, f.Confusion.Total(),
			"fold %d: confusion counts must cover the test set", f.Index)

		for name, m := range map[string]Metric{
			"accuracy":          f.Accuracy,
			"balanced accuracy": f.BalancedAccuracy,
			"sensitivity":       f.Sensitivity,
			"specificity":       f.Specificity,
		} {
			require.True(t, m.Defined, "fold %d: %s should be defined", f.Index, name)
			assert.GreaterOrEqual(t, m.Value, 0.0, "fold %d: %s", f.Index, name)
			assert.LessOrEqual(t, m.Value, 1.0, "fold %d: %s", f.Index, name)
		}
	}

	for name, agg := range map[string]Aggregate{
		"accuracy":          rep.Accuracy,
		"balanced accuracy": rep.BalancedAccuracy,
		"sensitivity":       rep.Sensitivity,
		"specificity":       rep.Specificity,
	} {
		assert.Equal(t, 10, agg.Summary.N, name)
		assert.Zero(t, agg.Undefined, name)
		assert.GreaterOrEqual(t, agg.Summary.Mean, 0.0, name)
		assert.LessOrEqual(t, agg.Summary.Mean, 1.0, name)
	}

	// Well-separated clusters: the classifier should do far better than
	// chance on every fold.
	assert.Greater(t, rep.Accuracy.Summary.Mean, 0.8)
}

func TestRunFoldOrderAndIndices(t *testing.T) {
	x, y := syntheticDataset(t)
	ev := &Evaluator{Folds: 5, Seed: 3, Shuffle: true}
	rep, err := ev.Run(context.Background(), x, y)
	require.NoError(t, err)

	for i, f := range rep.Folds {
		assert.Equal(t, i+1, f.Index)
	}
}

func TestRunDeterministicForFixedSeed(t *testing.T) {
	x, y := syntheticDataset(t)
	ev := &Evaluator{Folds: 10, Seed: 1, Shuffle: true}

	a, err := ev.Run(context.Background(), x, y)
	require.NoError(t, err)
	b, err := ev.Run(context.Background(), x, y)
	require.NoError(t, err)

	// Everything except the run ID must be byte-identical.
	if diff := cmp.Diff(a.Folds, b.Folds); diff != "" {
		t.Fatalf("repeated runs differ (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	x, y := syntheticDataset(t)

	seq := &Evaluator{Folds: 10, Seed: 7, Shuffle: true, Workers: 1}
	par := &Evaluator{Folds: 10, Seed: 7, Shuffle: true, Workers: 4}

	a, err := seq.Run(context.Background(), x, y)
	require.NoError(t, err)
	b, err := par.Run(context.Background(), x, y)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Folds, b.Folds); diff != "" {
		t.Fatalf("parallel run differs from sequential (-seq +par):\n%s", diff)
	}
}

func TestRunPropagatesDegenerateSplit(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := []int{1, 1, 1, 1}

	ev := &Evaluator{Folds: 2, Seed: 1}
	_, err := ev.Run(context.Background(), x, y)
	require.Error(t, err)
}

func TestRunRejectsMisalignedLabels(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	ev := &Evaluator{Folds: 2, Seed: 1}
	_, err := ev.Run(context.Background(), x, []int{0, 1})
	require.Error(t, err)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	x, y := syntheticDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := &Evaluator{Folds: 10, Seed: 1, Shuffle: true}
	_, err := ev.Run(ctx, x, y)
	require.ErrorIs(t, err, context.Canceled)
}
