// Package cv implements stratified k-fold cross-validation partitioning.
// Splits are driven by an explicitly seeded random source so that a fixed
// seed and shuffle flag reproduce identical partitions run to run.
package cv

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrDegenerate marks inputs that cannot be stratified: too few folds, a
// class smaller than the fold count, or a single-class target.
var ErrDegenerate = errors.New("cv: degenerate split")

// Fold is one train/test partition. Index slices refer to rows of the
// original feature matrix and are sorted ascending.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold partitions rows into k folds preserving the class balance
// of the target vector in every test set.
//
// Tie-breaking for imbalanced remainders is fixed and documented: within each
// class, the n mod k leftover members go to the lowest-numbered folds. With
// Shuffle set, class members are shuffled before assignment, so which rows
// land in the larger folds depends only on the seed.
type StratifiedKFold struct {
	Folds   int
	Shuffle bool
	Seed    int64
}

// Split assigns every row to exactly one test set. The union of the returned
// test sets is the full row index set; train and test of a fold never
// overlap.
func (s StratifiedKFold) Split(labels []int) ([]Fold, error) {
	if s.Folds < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrDegenerate, s.Folds)
	}

	byClass := map[int][]int{}
	for i, y := range labels {
		byClass[y] = append(byClass[y], i)
	}
	if len(byClass) < 2 {
		return nil, fmt.Errorf("%w: target has a single class", ErrDegenerate)
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	for _, c := range classes {
		if len(byClass[c]) < s.Folds {
			return nil, fmt.Errorf("%w: class %d has %d members, fewer than %d folds",
				ErrDegenerate, c, len(byClass[c]), s.Folds)
		}
	}

	// One source drives all shuffles; classes are visited in ascending order
	// so the consumption sequence is reproducible.
	rng := rand.New(rand.NewSource(s.Seed))

	tests := make([][]int, s.Folds)
	for _, c := range classes {
		members := append([]int(nil), byClass[c]...)
		if s.Shuffle {
			rng.Shuffle(len(members), func(i, j int) {
				members[i], members[j] = members[j], members[i]
			})
		}

		base := len(members) / s.Folds
		rem := len(members) % s.Folds
		pos := 0
		for f := 0; f < s.Folds; f++ {
			size := base
			if f < rem {
				size++
			}
			tests[f] = append(tests[f], members[pos:pos+size]...)
			pos += size
		}
	}

	folds := make([]Fold, s.Folds)
	for f := range folds {
		test := append([]int(nil), tests[f]...)
		sort.Ints(test)

		inTest := make(map[int]bool, len(test))
		for _, i := range test {
			inTest[i] = true
		}
		train := make([]int, 0, len(labels)-len(test))
		for i := range labels {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: test}
	}
	return folds, nil
}
