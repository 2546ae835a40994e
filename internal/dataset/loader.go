package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// HTTPClient allows injecting a mock HTTP client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader reads a CSV resource into a validated Table.
type Loader struct {
	// Client is used for http/https sources. Defaults to http.DefaultClient.
	Client HTTPClient
	// Logger is optional; nil disables logging.
	Logger *zap.Logger
}

// Load reads the CSV at source (a local path or an http/https URL) and
// validates it against the schema. Any ingestion failure is fatal to the
// caller; there is no retry policy at this scale.
func (l *Loader) Load(ctx context.Context, source string, schema Schema) (*Table, error) {
	if err := validateSchema(schema); err != nil {
		return nil, err
	}

	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := parse(rc, schema)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	if l.Logger != nil {
		l.Logger.Info("dataset loaded",
			zap.String("source", source),
			zap.Int("rows", table.NumRows()),
			zap.Int("features", table.NumFeatures()))
	}
	return table, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", source, err)
		}
		client := l.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
		}
		return resp.Body, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return f, nil
}

func validateSchema(s Schema) error {
	if s.IndexColumn == "" {
		return fmt.Errorf("%w: index column not set", ErrSchema)
	}
	if s.LabelColumn == "" {
		return fmt.Errorf("%w: label column not set", ErrSchema)
	}
	if s.FeatureOffset < 1 {
		return fmt.Errorf("%w: feature offset %d must be >= 1", ErrSchema, s.FeatureOffset)
	}
	return nil
}

func parse(r io.Reader, schema Schema) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	indexPos := -1
	for i, name := range header {
		if name == schema.IndexColumn {
			indexPos = i
			break
		}
	}
	if indexPos < 0 {
		return nil, fmt.Errorf("%w: index column %q not found", ErrSchema, schema.IndexColumn)
	}

	// Columns are interpreted with the index column removed, matching the
	// offset convention of the schema.
	var cols []string
	var colPos []int
	for i, name := range header {
		if i == indexPos {
			continue
		}
		cols = append(cols, name)
		colPos = append(colPos, i)
	}
	if schema.FeatureOffset >= len(cols) {
		return nil, fmt.Errorf("%w: feature offset %d leaves no feature columns (have %d non-index columns)",
			ErrSchema, schema.FeatureOffset, len(cols))
	}

	labelPos := -1
	for i, name := range cols[:schema.FeatureOffset] {
		if name == schema.LabelColumn {
			labelPos = i
			break
		}
	}
	if labelPos < 0 {
		return nil, fmt.Errorf("%w: label column %q not found before feature offset %d",
			ErrSchema, schema.LabelColumn, schema.FeatureOffset)
	}

	t := &Table{
		schema:       schema,
		featureNames: append([]string(nil), cols[schema.FeatureOffset:]...),
		covariates:   map[string][]string{},
	}
	for i, name := range cols[:schema.FeatureOffset] {
		if i != labelPos {
			t.covariates[name] = nil
		}
	}

	seen := map[string]int{}
	var raw []float64
	row := 1 // header was row 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrSchema, row, len(rec), len(header))
		}

		id := rec[indexPos]
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate identifier %q at rows %d and %d", ErrSchema, id, prev, row)
		}
		seen[id] = row
		t.ids = append(t.ids, id)

		for i, name := range cols[:schema.FeatureOffset] {
			v := rec[colPos[i]]
			if i == labelPos {
				y, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil || (y != 0 && y != 1) {
					return nil, fmt.Errorf("%w: row %d: label %q is not 0 or 1", ErrSchema, row, v)
				}
				t.labels = append(t.labels, y)
				continue
			}
			t.covariates[name] = append(t.covariates[name], v)
		}

		for i, name := range t.featureNames {
			v := rec[colPos[schema.FeatureOffset+i]]
			// Feature values pass through single precision on ingest; the
			// reduced precision is part of the reproducible numeric
			// behavior.
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: feature %q value %q is not numeric", ErrSchema, row, name, v)
			}
			raw = append(raw, float64(float32(f)))
		}
	}

	if len(t.ids) == 0 {
		return nil, fmt.Errorf("%w: dataset has no rows", ErrSchema)
	}
	t.features = mat.NewDense(len(t.ids), len(t.featureNames), raw)
	return t, nil
}
