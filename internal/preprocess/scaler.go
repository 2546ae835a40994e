// Package preprocess provides feature standardization for the evaluation
// pipeline. The scaler follows the fit/transform contract: statistics are
// estimated once from training rows and then applied unchanged to any rows,
// so test data never leaks into the fitted parameters.
package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned by Transform before Fit has been called.
var ErrNotFitted = errors.New("preprocess: scaler not fitted")

// Transformer is the fit/transform contract shared by feature
// transformations.
type Transformer interface {
	Fit(x mat.Matrix) error
	Transform(x mat.Matrix) (*mat.Dense, error)
	FitTransform(x mat.Matrix) (*mat.Dense, error)
}

// StandardScaler rescales each feature to zero mean and unit variance using
// the statistics of the rows it was fitted on.
//
// A feature with zero variance in the fitted rows is centered but left
// unscaled (scale 1.0), so degenerate columns never produce a division by
// zero.
type StandardScaler struct {
	mean  []float64
	std   []float64
	scale []float64
}

var _ Transformer = (*StandardScaler)(nil)

// Fit estimates per-feature mean and population standard deviation from x.
func (s *StandardScaler) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("preprocess: cannot fit scaler on %dx%d matrix", rows, cols)
	}

	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)
	s.scale = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		s.mean[j] = stat.Mean(col, nil)
		s.std[j] = stat.PopStdDev(col, nil)
		s.scale[j] = s.std[j]
		if s.scale[j] == 0 {
			s.scale[j] = 1
		}
	}
	return nil
}

// Transform applies (x - mean) / std using the fitted statistics.
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s.mean == nil {
		return nil, ErrNotFitted
	}
	rows, cols := x.Dims()
	if cols != len(s.mean) {
		return nil, fmt.Errorf("preprocess: fitted on %d features, got %d", len(s.mean), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, (x.At(i, j)-s.mean[j])/s.scale[j])
		}
	}
	return out, nil
}

// FitTransform fits on x and returns the transformed x.
func (s *StandardScaler) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// Mean returns the fitted per-feature means, or nil before Fit.
func (s *StandardScaler) Mean() []float64 {
	if s.mean == nil {
		return nil
	}
	out := make([]float64, len(s.mean))
	copy(out, s.mean)
	return out
}

// Std returns the fitted per-feature standard deviations, or nil before Fit.
// Zero-variance features report 0 here even though they transform with
// scale 1.
func (s *StandardScaler) Std() []float64 {
	if s.std == nil {
		return nil
	}
	out := make([]float64, len(s.std))
	copy(out, s.std)
	return out
}
