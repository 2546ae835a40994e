package svm

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

// separableData builds two well-separated Gaussian-ish clusters in m
// dimensions, deterministically.
func separableData(n, m int, seed int64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))
	x := mat.NewDense(n, m, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		center := -2.0
		if i%2 == 0 {
			center = 2.0
			y[i] = 1
		}
		for j := 0; j < m; j++ {
			x.Set(i, j, center+rng.NormFloat64()*0.5)
		}
	}
	return x, y
}

func TestFitSeparatesClusters(t *testing.T) {
	x, y := separableData(80, 4, 11)

	clf := &LinearSVC{Seed: 1}
	if err := clf.Fit(x, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	pred, err := clf.Predict(x)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	wrong := 0
	for i := range y {
		if pred[i] != y[i] {
			wrong++
		}
	}
	if wrong > 0 {
		t.Fatalf("%d of %d training points misclassified on separable data", wrong, len(y))
	}
}

func TestFitDeterministicForFixedSeed(t *testing.T) {
	x, y := separableData(40, 3, 5)

	a := &LinearSVC{Seed: 9}
	b := &LinearSVC{Seed: 9}
	if err := a.Fit(x, y); err != nil {
		t.Fatalf("first Fit failed: %v", err)
	}
	if err := b.Fit(x, y); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}

	if diff := cmp.Diff(a.Coef(), b.Coef()); diff != "" {
		t.Fatalf("weights differ for identical seed:\n%s", diff)
	}
	if a.Intercept() != b.Intercept() {
		t.Fatalf("intercepts differ: %v vs %v", a.Intercept(), b.Intercept())
	}
}

func TestDecisionFunctionSign(t *testing.T) {
	x, y := separableData(40, 2, 3)
	clf := &LinearSVC{Seed: 2}
	if err := clf.Fit(x, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	pos, err := clf.DecisionFunction([]float64{2, 2})
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	neg, err := clf.DecisionFunction([]float64{-2, -2})
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	if pos <= 0 || neg >= 0 {
		t.Fatalf("decision values have wrong signs: pos=%v neg=%v", pos, neg)
	}
}

func TestFitRejectsSingleClass(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 3, 3})
	clf := &LinearSVC{}
	if err := clf.Fit(x, []int{1, 1, 1}); err == nil {
		t.Fatal("expected error for single-class training data")
	}
}

func TestFitRejectsBadLabels(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})
	clf := &LinearSVC{}
	if err := clf.Fit(x, []int{0, 2}); err == nil {
		t.Fatal("expected error for label outside {0,1}")
	}
	if err := clf.Fit(x, []int{0}); err == nil {
		t.Fatal("expected error for label/row count mismatch")
	}
}

func TestPredictBeforeFit(t *testing.T) {
	clf := &LinearSVC{}
	if _, err := clf.Predict(mat.NewDense(1, 1, []float64{0})); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("err = %v, want ErrNotFitted", err)
	}
	if _, err := clf.DecisionFunction([]float64{0}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("err = %v, want ErrNotFitted", err)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	x, y := separableData(20, 2, 1)
	clf := &LinearSVC{Seed: 1}
	if err := clf.Fit(x, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := clf.Predict(mat.NewDense(1, 3, []float64{1, 2, 3})); err == nil {
		t.Fatal("expected error for feature-count mismatch")
	}
}
