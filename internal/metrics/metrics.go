// Package metrics derives classification performance measures from a 2x2
// confusion matrix. Rates whose denominator is empty are signaled as
// undefined via ErrUndefined instead of silently producing NaN or zero.
package metrics

import (
	"errors"
	"fmt"
)

// ErrUndefined marks a rate whose denominator is zero, e.g. sensitivity on a
// test partition with no positive examples.
var ErrUndefined = errors.New("metrics: undefined rate")

// ConfusionMatrix counts outcomes of binary predictions. The convention is
// fixed: rows are truth, columns are prediction, class 0 first, so the
// layout is [[TN FP] [FN TP]].
type ConfusionMatrix struct {
	TN int
	FP int
	FN int
	TP int
}

// Confusion tallies aligned true and predicted binary labels.
func Confusion(yTrue, yPred []int) (ConfusionMatrix, error) {
	var c ConfusionMatrix
	if len(yTrue) != len(yPred) {
		return c, fmt.Errorf("metrics: %d true labels but %d predictions", len(yTrue), len(yPred))
	}
	for i := range yTrue {
		if yTrue[i] != 0 && yTrue[i] != 1 {
			return c, fmt.Errorf("metrics: true label %d at row %d is not 0 or 1", yTrue[i], i)
		}
		if yPred[i] != 0 && yPred[i] != 1 {
			return c, fmt.Errorf("metrics: predicted label %d at row %d is not 0 or 1", yPred[i], i)
		}
		switch {
		case yTrue[i] == 0 && yPred[i] == 0:
			c.TN++
		case yTrue[i] == 0 && yPred[i] == 1:
			c.FP++
		case yTrue[i] == 1 && yPred[i] == 0:
			c.FN++
		default:
			c.TP++
		}
	}
	return c, nil
}

// Total returns the number of counted examples.
func (c ConfusionMatrix) Total() int { return c.TN + c.FP + c.FN + c.TP }

// Accuracy is (TP+TN)/total.
func (c ConfusionMatrix) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(total)
}

// Sensitivity is the true positive rate TP/(TP+FN). Undefined when the test
// partition has no positive examples.
func (c ConfusionMatrix) Sensitivity() (float64, error) {
	if c.TP+c.FN == 0 {
		return 0, fmt.Errorf("%w: no positive examples", ErrUndefined)
	}
	return float64(c.TP) / float64(c.TP+c.FN), nil
}

// Specificity is the true negative rate TN/(TN+FP). Undefined when the test
// partition has no negative examples.
func (c ConfusionMatrix) Specificity() (float64, error) {
	if c.TN+c.FP == 0 {
		return 0, fmt.Errorf("%w: no negative examples", ErrUndefined)
	}
	return float64(c.TN) / float64(c.TN+c.FP), nil
}

// BalancedAccuracy is the unweighted mean of sensitivity and specificity,
// undefined whenever either component is.
func (c ConfusionMatrix) BalancedAccuracy() (float64, error) {
	sens, err := c.Sensitivity()
	if err != nil {
		return 0, err
	}
	spec, err := c.Specificity()
	if err != nil {
		return 0, err
	}
	return (sens + spec) / 2, nil
}
