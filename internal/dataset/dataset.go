// Package dataset loads and validates the tabular participant data used by
// the evaluation pipeline. A dataset is a CSV resource (local file or URL)
// with a header row, a unique identifier column, an integer binary label
// column, optional covariate columns, and contiguous numeric feature columns
// from a fixed offset onward. Schema violations are caught at ingestion
// rather than surfacing later as silent coercions.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrSchema marks any violation of the dataset schema: missing columns,
// duplicate identifiers, non-binary labels, non-numeric feature cells.
var ErrSchema = errors.New("dataset: schema violation")

// Schema describes how the CSV columns are interpreted.
type Schema struct {
	// IndexColumn is the participant identifier column; values must be unique.
	IndexColumn string
	// LabelColumn holds the binary diagnosis label, 0 or 1.
	LabelColumn string
	// FeatureOffset is the position of the first feature column, counted over
	// the columns that remain after the index column is removed. Columns
	// before the offset (other than the label) are kept as covariates.
	FeatureOffset int
}

// Table is an immutable, validated in-memory dataset. Row order is fixed at
// load time; labels and feature rows stay aligned by construction.
type Table struct {
	schema Schema

	ids          []string
	labels       []int
	featureNames []string
	features     *mat.Dense

	// covariates holds the non-feature, non-label columns (e.g. Sex, Age)
	// as raw strings, keyed by column name.
	covariates map[string][]string
}

// NumRows returns the number of participants.
func (t *Table) NumRows() int { return len(t.ids) }

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int { return len(t.featureNames) }

// IDs returns the participant identifiers in row order.
func (t *Table) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// FeatureNames returns the feature column names in column order.
func (t *Table) FeatureNames() []string {
	out := make([]string, len(t.featureNames))
	copy(out, t.featureNames)
	return out
}

// Labels returns the binary target vector in row order.
func (t *Table) Labels() []int {
	out := make([]int, len(t.labels))
	copy(out, t.labels)
	return out
}

// Features returns the N x M feature matrix. The returned matrix is a copy;
// callers may mutate it without affecting the table.
func (t *Table) Features() *mat.Dense {
	if t.features == nil {
		return nil
	}
	out := mat.DenseCopyOf(t.features)
	return out
}

// CovariateNames returns the covariate column names, sorted.
func (t *Table) CovariateNames() []string {
	names := make([]string, 0, len(t.covariates))
	for name := range t.covariates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Covariate returns the raw values of a covariate column in row order.
func (t *Table) Covariate(name string) ([]string, error) {
	col, ok := t.covariates[name]
	if !ok {
		return nil, fmt.Errorf("%w: no covariate column %q", ErrSchema, name)
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, nil
}

// ClassCounts returns the number of rows per label value.
func (t *Table) ClassCounts() map[int]int {
	counts := make(map[int]int, 2)
	for _, y := range t.labels {
		counts[y]++
	}
	return counts
}

// CrossTab counts rows by (label, covariate value). Used for post-hoc
// confound inspection, e.g. diagnosis by sex.
type CrossTab struct {
	Covariate string
	// Values are the distinct covariate values in sorted order.
	Values []string
	// Counts[label][value] is the row count for that cell.
	Counts map[int]map[string]int
}

// CrossTabulate builds a label x covariate contingency table.
func (t *Table) CrossTabulate(covariate string) (*CrossTab, error) {
	col, ok := t.covariates[covariate]
	if !ok {
		return nil, fmt.Errorf("%w: no covariate column %q", ErrSchema, covariate)
	}

	ct := &CrossTab{
		Covariate: covariate,
		Counts:    map[int]map[string]int{0: {}, 1: {}},
	}
	seen := map[string]bool{}
	for i, v := range col {
		ct.Counts[t.labels[i]][v]++
		if !seen[v] {
			seen[v] = true
			ct.Values = append(ct.Values, v)
		}
	}
	sort.Strings(ct.Values)
	return ct, nil
}
