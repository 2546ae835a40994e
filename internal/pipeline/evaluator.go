// Package pipeline wires the cross-validated evaluation loop: stratified
// partitioning, per-fold standardization fitted on training rows only, a
// linear hinge-loss classifier, and confusion-matrix metrics aggregated
// across folds.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"neurocv/internal/cv"
	"neurocv/internal/metrics"
	"neurocv/internal/preprocess"
	"neurocv/internal/svm"
)

// Metric is a single fold-level metric value. Undefined values (zero
// denominator in the underlying rate) carry Defined == false and are
// excluded from aggregation.
type Metric struct {
	Value   float64
	Defined bool
}

// FoldResult holds everything reported for one cross-validation fold. Model
// state (scaler, classifier) is deliberately not retained; it is discarded
// once the fold's metrics are recorded.
type FoldResult struct {
	// Index is 1-based, matching the printed fold order.
	Index     int
	TrainSize int
	TestSize  int
	Confusion metrics.ConfusionMatrix

	Accuracy         Metric
	BalancedAccuracy Metric
	Sensitivity      Metric
	Specificity      Metric
}

// Aggregate is the cross-fold summary of one metric. Undefined counts folds
// excluded from the mean and standard deviation.
type Aggregate struct {
	Summary   metrics.Summary
	Undefined int
}

// Report is the full outcome of one evaluation run.
type Report struct {
	RunID string
	Folds []FoldResult

	Accuracy         Aggregate
	BalancedAccuracy Aggregate
	Sensitivity      Aggregate
	Specificity      Aggregate
}

// Evaluator runs the cross-validated evaluation loop. The zero value is not
// usable; construct with the exported fields set.
type Evaluator struct {
	// Folds is the cross-validation fold count K.
	Folds int
	// Seed drives both the partitioner shuffle and classifier initialization.
	Seed int64
	// Shuffle controls whether rows are shuffled before stratification.
	Shuffle bool
	// Workers > 1 evaluates folds concurrently. Results and reporting stay
	// ordered by fold index either way.
	Workers int
	// Logger is optional; nil disables logging.
	Logger *zap.Logger
}

// Run evaluates the classifier on features (n x m) and binary labels.
// Any fold-level error aborts the run; there is no retry or partial result.
func (e *Evaluator) Run(ctx context.Context, features *mat.Dense, labels []int) (*Report, error) {
	n, m := features.Dims()
	if len(labels) != n {
		return nil, fmt.Errorf("pipeline: %d rows but %d labels", n, len(labels))
	}

	skf := cv.StratifiedKFold{Folds: e.Folds, Shuffle: e.Shuffle, Seed: e.Seed}
	folds, err := skf.Split(labels)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID: uuid.NewString(),
		Folds: make([]FoldResult, len(folds)),
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", report.RunID))
	logger.Info("starting evaluation",
		zap.Int("rows", n),
		zap.Int("features", m),
		zap.Int("folds", e.Folds),
		zap.Int64("seed", e.Seed),
		zap.Bool("shuffle", e.Shuffle))

	if e.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Workers)
		for i := range folds {
			i := i
			g.Go(func() error {
				res, err := e.evalFold(gctx, i, folds[i], features, labels, logger)
				if err != nil {
					return err
				}
				report.Folds[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range folds {
			res, err := e.evalFold(ctx, i, folds[i], features, labels, logger)
			if err != nil {
				return nil, err
			}
			report.Folds[i] = res
		}
	}

	aggregate(report)
	logger.Info("evaluation complete",
		zap.Float64("mean_accuracy", report.Accuracy.Summary.Mean),
		zap.Float64("mean_balanced_accuracy", report.BalancedAccuracy.Summary.Mean))
	return report, nil
}

func (e *Evaluator) evalFold(ctx context.Context, i int, fold cv.Fold, features *mat.Dense, labels []int, logger *zap.Logger) (FoldResult, error) {
	if err := ctx.Err(); err != nil {
		return FoldResult{}, err
	}

	trainX := takeRows(features, fold.Train)
	testX := takeRows(features, fold.Test)
	trainY := takeLabels(labels, fold.Train)
	testY := takeLabels(labels, fold.Test)

	// Standardization statistics come from the training partition only.
	scaler := &preprocess.StandardScaler{}
	trainNorm, err := scaler.FitTransform(trainX)
	if err != nil {
		return FoldResult{}, fmt.Errorf("fold %d: fit scaler: %w", i+1, err)
	}
	testNorm, err := scaler.Transform(testX)
	if err != nil {
		return FoldResult{}, fmt.Errorf("fold %d: transform test rows: %w", i+1, err)
	}

	// Fold index perturbs the seed so folds stay independent while the run
	// as a whole remains reproducible.
	clf := &svm.LinearSVC{Seed: e.Seed + int64(i)}
	if err := clf.Fit(trainNorm, trainY); err != nil {
		return FoldResult{}, fmt.Errorf("fold %d: fit classifier: %w", i+1, err)
	}
	pred, err := clf.Predict(testNorm)
	if err != nil {
		return FoldResult{}, fmt.Errorf("fold %d: predict: %w", i+1, err)
	}

	cm, err := metrics.Confusion(testY, pred)
	if err != nil {
		return FoldResult{}, fmt.Errorf("fold %d: %w", i+1, err)
	}

	res := FoldResult{
		Index:     i + 1,
		TrainSize: len(fold.Train),
		TestSize:  len(fold.Test),
		Confusion: cm,
		Accuracy:  Metric{Value: cm.Accuracy(), Defined: true},
	}
	res.Sensitivity = rate(cm.Sensitivity)
	res.Specificity = rate(cm.Specificity)
	res.BalancedAccuracy = rate(cm.BalancedAccuracy)

	logger.Debug("fold evaluated",
		zap.Int("fold", res.Index),
		zap.Int("train_size", res.TrainSize),
		zap.Int("test_size", res.TestSize),
		zap.Float64("accuracy", res.Accuracy.Value))
	return res, nil
}

// rate converts a confusion-matrix rate into a Metric, mapping ErrUndefined
// to an explicit undefined marker. Any other error cannot occur for a
// well-formed matrix.
func rate(f func() (float64, error)) Metric {
	v, err := f()
	if errors.Is(err, metrics.ErrUndefined) {
		return Metric{}
	}
	return Metric{Value: v, Defined: true}
}

func aggregate(r *Report) {
	r.Accuracy = summarize(r.Folds, func(f FoldResult) Metric { return f.Accuracy })
	r.BalancedAccuracy = summarize(r.Folds, func(f FoldResult) Metric { return f.BalancedAccuracy })
	r.Sensitivity = summarize(r.Folds, func(f FoldResult) Metric { return f.Sensitivity })
	r.Specificity = summarize(r.Folds, func(f FoldResult) Metric { return f.Specificity })
}

func summarize(folds []FoldResult, pick func(FoldResult) Metric) Aggregate {
	var defined []float64
	undefined := 0
	for _, f := range folds {
		m := pick(f)
		if !m.Defined {
			undefined++
			continue
		}
		defined = append(defined, m.Value)
	}
	return Aggregate{Summary: metrics.Summarize(defined), Undefined: undefined}
}

func takeRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for r, i := range idx {
		out.SetRow(r, x.RawRowView(i))
	}
	return out
}

func takeLabels(labels []int, idx []int) []int {
	out := make([]int, len(idx))
	for r, i := range idx {
		out[r] = labels[i]
	}
	return out
}
