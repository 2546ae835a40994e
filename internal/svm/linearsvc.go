// Package svm implements a linear maximum-margin binary classifier trained
// with hinge loss. The solver is a seeded stochastic subgradient descent
// (Pegasos), so identical seed and data yield identical weights.
package svm

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotFitted is returned when predicting with an unfitted model.
var ErrNotFitted = errors.New("svm: model not fitted")

// Defaults for the solver. C mirrors the usual inverse regularization
// strength; Epochs is in passes over the training set.
const (
	DefaultC      = 1.0
	DefaultEpochs = 200
)

// LinearSVC is a linear binary classifier with hinge loss and L2
// regularization. Labels are 0/1 at the API surface and mapped to -1/+1
// internally. No probability output is provided.
type LinearSVC struct {
	// C is the inverse regularization strength; <= 0 selects DefaultC.
	C float64
	// Epochs is the number of passes over the training data; <= 0 selects
	// DefaultEpochs.
	Epochs int
	// Seed drives the stochastic sampling of training rows.
	Seed int64

	w []float64
	b float64
}

// Fit trains on standardized features x (n x m) and binary labels y.
func (c *LinearSVC) Fit(x *mat.Dense, y []int) error {
	n, m := x.Dims()
	if n == 0 || m == 0 {
		return fmt.Errorf("svm: cannot fit on %dx%d matrix", n, m)
	}
	if len(y) != n {
		return fmt.Errorf("svm: %d rows but %d labels", n, len(y))
	}

	signs := make([]float64, n)
	havePos, haveNeg := false, false
	for i, label := range y {
		switch label {
		case 0:
			signs[i] = -1
			haveNeg = true
		case 1:
			signs[i] = 1
			havePos = true
		default:
			return fmt.Errorf("svm: label %d at row %d is not 0 or 1", label, i)
		}
	}
	if !havePos || !haveNeg {
		return errors.New("svm: training data contains a single class")
	}

	cc := c.C
	if cc <= 0 {
		cc = DefaultC
	}
	epochs := c.Epochs
	if epochs <= 0 {
		epochs = DefaultEpochs
	}
	lambda := 1 / (cc * float64(n))

	w := make([]float64, m)
	b := 0.0
	xi := make([]float64, m)
	rng := rand.New(rand.NewSource(c.Seed))

	steps := epochs * n
	for t := 1; t <= steps; t++ {
		i := rng.Intn(n)
		mat.Row(xi, i, x)
		eta := 1 / (lambda * float64(t))

		margin := signs[i] * (floats.Dot(w, xi) + b)
		floats.Scale(1-eta*lambda, w)
		if margin < 1 {
			floats.AddScaled(w, eta*signs[i], xi)
			b += eta * signs[i]
		}
	}

	c.w = w
	c.b = b
	return nil
}

// DecisionFunction returns the signed distance proxy w.x + b for one
// standardized feature vector.
func (c *LinearSVC) DecisionFunction(row []float64) (float64, error) {
	if c.w == nil {
		return 0, ErrNotFitted
	}
	if len(row) != len(c.w) {
		return 0, fmt.Errorf("svm: fitted on %d features, got %d", len(c.w), len(row))
	}
	return floats.Dot(c.w, row) + c.b, nil
}

// Predict returns one binary label per row of x.
func (c *LinearSVC) Predict(x *mat.Dense) ([]int, error) {
	if c.w == nil {
		return nil, ErrNotFitted
	}
	n, m := x.Dims()
	if m != len(c.w) {
		return nil, fmt.Errorf("svm: fitted on %d features, got %d", len(c.w), m)
	}

	out := make([]int, n)
	row := make([]float64, m)
	for i := 0; i < n; i++ {
		mat.Row(row, i, x)
		if floats.Dot(c.w, row)+c.b >= 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// Coef returns the fitted weight vector, or nil before Fit.
func (c *LinearSVC) Coef() []float64 {
	if c.w == nil {
		return nil
	}
	out := make([]float64, len(c.w))
	copy(out, c.w)
	return out
}

// Intercept returns the fitted bias term.
func (c *LinearSVC) Intercept() float64 { return c.b }
