// Package quality derives heuristic data-quality signals from an in-memory
// dataset and reduces them to a bounded, interpretable score.
//
// The score is additive and binary per category: each triggered probe costs a
// fixed penalty regardless of how many columns tripped it or by how much.
// A dataset with one barely-over-threshold missing column scores the same as
// one missing 90% of every column. That coarseness is deliberate — the score
// answers "which categories failed", not "how badly".
package quality

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"edaqa/internal/dataset"
)

// ErrInvalidArgument marks a threshold outside its documented domain.
// Thresholds are never clamped: silently changing the policy a caller asked
// for would be worse than rejecting it.
var ErrInvalidArgument = errors.New("invalid argument")

// Fixed penalties per triggered probe.
const (
	penaltyHighMissing     = 20
	penaltyDuplicates      = 15
	penaltyConstantColumns = 10
	penaltyHighCardinality = 10
	penaltyHighZero        = 5
)

// Options are the per-call threshold parameters. Zero-value Options are not
// valid; start from DefaultOptions.
type Options struct {
	// MissingThreshold is the per-column missing share above which a column
	// counts as high-missing. Strict: a column exactly at the threshold is
	// not flagged. Domain [0,1].
	MissingThreshold float64

	// HighCardinalityThreshold is the distinct non-null value count above
	// which a categorical column counts as high-cardinality. Must be > 0.
	HighCardinalityThreshold int

	// ZeroThreshold is the per-numeric-column share of exact zeros above
	// which it counts as high-zero. Domain [0,1].
	ZeroThreshold float64
}

func DefaultOptions() Options {
	return Options{
		MissingThreshold:         0.3,
		HighCardinalityThreshold: 50,
		ZeroThreshold:            0.5,
	}
}

// Validate rejects out-of-range or non-finite thresholds.
func (o Options) Validate() error {
	if math.IsNaN(o.MissingThreshold) || o.MissingThreshold < 0 || o.MissingThreshold > 1 {
		return fmt.Errorf("%w: missing threshold %v outside [0,1]", ErrInvalidArgument, o.MissingThreshold)
	}
	if o.HighCardinalityThreshold <= 0 {
		return fmt.Errorf("%w: high cardinality threshold %d must be positive", ErrInvalidArgument, o.HighCardinalityThreshold)
	}
	if math.IsNaN(o.ZeroThreshold) || o.ZeroThreshold < 0 || o.ZeroThreshold > 1 {
		return fmt.Errorf("%w: zero threshold %v outside [0,1]", ErrInvalidArgument, o.ZeroThreshold)
	}
	return nil
}

// Report is the immutable output of one evaluation. Every detail container is
// consistent with its paired flag: the flag is true iff the container is
// non-empty (duplicate count > 0 for the duplicate flag).
type Report struct {
	HasHighMissing     bool     `json:"has_high_missing"`
	HighMissingColumns []string `json:"high_missing_columns"`

	HasDuplicates  bool `json:"has_duplicates"`
	DuplicateCount int  `json:"duplicate_count"`

	HasConstantColumns bool     `json:"has_constant_columns"`
	ConstantColumns    []string `json:"constant_columns"`

	HasHighCardinalityCategoricals bool     `json:"has_high_cardinality_categoricals"`
	HighCardinalityColumns         []string `json:"high_cardinality_columns"`

	HasManyZeroValues bool               `json:"has_many_zero_values"`
	HighZeroColumns   []string           `json:"high_zero_columns"`
	ZeroShares        map[string]float64 `json:"zero_shares"`

	QualityScore int `json:"quality_score"`
}

// Unit projects the score onto [0,1] for coarser consumers.
func (r *Report) Unit() float64 {
	u := float64(r.QualityScore) / 100.0
	return math.Max(0.0, math.Min(1.0, u))
}

// Flags is the lossy boolean-only projection of the report.
func (r *Report) Flags() map[string]bool {
	return map[string]bool{
		"has_high_missing":                  r.HasHighMissing,
		"has_duplicates":                    r.HasDuplicates,
		"has_constant_columns":              r.HasConstantColumns,
		"has_high_cardinality_categoricals": r.HasHighCardinalityCategoricals,
		"has_many_zero_values":              r.HasManyZeroValues,
	}
}

// Evaluate runs the five probes over the dataset and aggregates the score.
// It is a pure function of its inputs: no I/O, no logging, no randomness.
func Evaluate(ds *dataset.Dataset, opts Options) (*Report, error) {
	if ds == nil || ds.NumRows() < 1 {
		return nil, fmt.Errorf("%w: dataset has no rows", dataset.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	nRows := ds.NumRows()
	rep := &Report{
		HighMissingColumns:     []string{},
		ConstantColumns:        []string{},
		HighCardinalityColumns: []string{},
		HighZeroColumns:        []string{},
		ZeroShares:             make(map[string]float64),
	}

	// Probe 1: missingness.
	for i := range ds.Columns {
		col := &ds.Columns[i]
		share := float64(col.NullCount()) / float64(nRows)
		if share > opts.MissingThreshold {
			rep.HighMissingColumns = append(rep.HighMissingColumns, col.Name)
		}
	}
	rep.HasHighMissing = len(rep.HighMissingColumns) > 0

	// Probe 2: duplicate rows. Null cells compare equal to each other, which
	// matches whole-row equality: a fully repeated row is a duplicate even
	// when it has gaps.
	rep.DuplicateCount = nRows - countDistinctRows(ds)
	rep.HasDuplicates = rep.DuplicateCount > 0

	// Probe 3: constant columns. Null counts as one distinct value, so an
	// all-null column and a single-valued column qualify the same way.
	for i := range ds.Columns {
		if distinctWithNull(&ds.Columns[i]) <= 1 {
			rep.ConstantColumns = append(rep.ConstantColumns, ds.Columns[i].Name)
		}
	}
	rep.HasConstantColumns = len(rep.ConstantColumns) > 0

	// Probe 4: high-cardinality categoricals. Nulls excluded here, unlike
	// probe 3.
	for i := range ds.Columns {
		col := &ds.Columns[i]
		if col.Kind != dataset.KindCategorical {
			continue
		}
		if distinctNonNull(col) > opts.HighCardinalityThreshold {
			rep.HighCardinalityColumns = append(rep.HighCardinalityColumns, col.Name)
		}
	}
	rep.HasHighCardinalityCategoricals = len(rep.HighCardinalityColumns) > 0

	// Probe 5: zero density over numeric columns. Every numeric column is
	// reported; flagging compares the exact share, not the rounded one.
	for i := range ds.Columns {
		col := &ds.Columns[i]
		if col.Kind != dataset.KindNumeric {
			continue
		}
		zeros := 0
		for _, v := range col.Values {
			if v.IsNum && v.Num == 0 {
				zeros++
			}
		}
		share := float64(zeros) / float64(nRows)
		rep.ZeroShares[col.Name] = round4(share)
		if share > opts.ZeroThreshold {
			rep.HighZeroColumns = append(rep.HighZeroColumns, col.Name)
		}
	}
	rep.HasManyZeroValues = len(rep.HighZeroColumns) > 0

	penalties := 0
	if rep.HasHighMissing {
		penalties += penaltyHighMissing
	}
	if rep.HasDuplicates {
		penalties += penaltyDuplicates
	}
	if rep.HasConstantColumns {
		penalties += penaltyConstantColumns
	}
	if rep.HasHighCardinalityCategoricals {
		penalties += penaltyHighCardinality
	}
	if rep.HasManyZeroValues {
		penalties += penaltyHighZero
	}
	rep.QualityScore = 100 - penalties
	if rep.QualityScore < 0 {
		rep.QualityScore = 0
	}

	return rep, nil
}

// ProblematicColumn is one row of the missingness ranking used by report
// authoring.
type ProblematicColumn struct {
	Column       string  `json:"column"`
	MissingShare float64 `json:"missing_share"`
	MissingCount int     `json:"missing_count"`
}

// RankProblematic lists columns whose missing share reaches minMissingShare
// (inclusive, unlike the probe's strict threshold), sorted by descending
// share. Ties keep original column order.
func RankProblematic(ds *dataset.Dataset, minMissingShare float64) []ProblematicColumn {
	if ds == nil || ds.NumRows() == 0 {
		return nil
	}
	nRows := ds.NumRows()

	var out []ProblematicColumn
	for i := range ds.Columns {
		col := &ds.Columns[i]
		missing := col.NullCount()
		share := float64(missing) / float64(nRows)
		if share >= minMissingShare {
			out = append(out, ProblematicColumn{
				Column:       col.Name,
				MissingShare: round4(share),
				MissingCount: missing,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MissingShare > out[j].MissingShare
	})
	return out
}

func countDistinctRows(ds *dataset.Dataset) int {
	nRows := ds.NumRows()
	seen := make(map[string]struct{}, nRows)
	var b strings.Builder
	for r := 0; r < nRows; r++ {
		b.Reset()
		for c := range ds.Columns {
			// Unit separator keeps adjacent fields from colliding.
			b.WriteString(ds.Columns[c].Values[r].Raw)
			b.WriteByte(0x1f)
		}
		seen[b.String()] = struct{}{}
	}
	return len(seen)
}

func distinctWithNull(col *dataset.Column) int {
	seen := make(map[string]struct{})
	hasNull := false
	for _, v := range col.Values {
		if v.Null {
			hasNull = true
			continue
		}
		seen[v.Raw] = struct{}{}
	}
	n := len(seen)
	if hasNull {
		n++
	}
	return n
}

func distinctNonNull(col *dataset.Column) int {
	seen := make(map[string]struct{})
	for _, v := range col.Values {
		if !v.Null {
			seen[v.Raw] = struct{}{}
		}
	}
	return len(seen)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
