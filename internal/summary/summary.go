// Package summary computes descriptive statistics over a dataset snapshot.
// Unlike the quality engine it carries no thresholds or verdicts — it only
// describes what is there.
package summary

import (
	"math"
	"sort"

	"edaqa/internal/dataset"
)

// BasicStats is the shape/size overview of a dataset.
type BasicStats struct {
	NumRows  int               `json:"n_rows"`
	NumCols  int               `json:"n_cols"`
	Columns  []string          `json:"columns"`
	DTypes   map[string]string `json:"dtypes"`
	MemoryMB float64           `json:"memory_mb"`
}

// Basic reports row/column counts, per-column kind labels and an approximate
// in-memory footprint.
func Basic(ds *dataset.Dataset) BasicStats {
	stats := BasicStats{
		NumRows: ds.NumRows(),
		NumCols: ds.NumCols(),
		Columns: ds.ColumnNames(),
		DTypes:  make(map[string]string, ds.NumCols()),
	}

	var bytes int64
	for i := range ds.Columns {
		col := &ds.Columns[i]
		stats.DTypes[col.Name] = col.Kind.String()
		for _, v := range col.Values {
			// Raw string plus the fixed per-cell overhead of the value struct.
			bytes += int64(len(v.Raw)) + 32
		}
	}
	stats.MemoryMB = round3(float64(bytes) / 1024 / 1024)
	return stats
}

// ColumnMissing is the per-column detail of MissingInfo.
type ColumnMissing struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingInfo aggregates null counts across the dataset.
type MissingInfo struct {
	TotalMissing       int                      `json:"total_missing"`
	ColumnsWithMissing int                      `json:"columns_with_missing"`
	Details            map[string]ColumnMissing `json:"details"`
}

func Missing(ds *dataset.Dataset) MissingInfo {
	info := MissingInfo{Details: make(map[string]ColumnMissing)}
	nRows := ds.NumRows()
	if nRows == 0 {
		return info
	}

	for i := range ds.Columns {
		col := &ds.Columns[i]
		n := col.NullCount()
		info.TotalMissing += n
		if n > 0 {
			info.Details[col.Name] = ColumnMissing{
				Count:   n,
				Percent: round2(float64(n) / float64(nRows) * 100),
			}
		}
	}
	info.ColumnsWithMissing = len(info.Details)
	return info
}

// MissingRow is one line of the row-per-column missingness table.
type MissingRow struct {
	Column         string  `json:"column"`
	MissingCount   int     `json:"missing_count"`
	MissingPercent float64 `json:"missing_percent"`
}

// MissingTable lists every column's missing count and percentage in header
// order, including clean columns.
func MissingTable(ds *dataset.Dataset) []MissingRow {
	nRows := ds.NumRows()
	rows := make([]MissingRow, 0, ds.NumCols())
	for i := range ds.Columns {
		col := &ds.Columns[i]
		n := col.NullCount()
		pct := 0.0
		if nRows > 0 {
			pct = round2(float64(n) / float64(nRows) * 100)
		}
		rows = append(rows, MissingRow{Column: col.Name, MissingCount: n, MissingPercent: pct})
	}
	return rows
}

// NumericStats is describe()-style output for one numeric column.
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"25%"`
	Median float64 `json:"50%"`
	Q75    float64 `json:"75%"`
	Max    float64 `json:"max"`
}

// NumericSummary covers every numeric column of the dataset.
type NumericSummary struct {
	NumericColumns []string                `json:"numeric_columns"`
	Stats          map[string]NumericStats `json:"stats"`
}

func Numeric(ds *dataset.Dataset) NumericSummary {
	out := NumericSummary{NumericColumns: []string{}, Stats: make(map[string]NumericStats)}
	for i := range ds.Columns {
		col := &ds.Columns[i]
		if col.Kind != dataset.KindNumeric {
			continue
		}
		out.NumericColumns = append(out.NumericColumns, col.Name)
		out.Stats[col.Name] = describeColumn(col)
	}
	return out
}

func describeColumn(col *dataset.Column) NumericStats {
	vals := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		if v.IsNum {
			vals = append(vals, v.Num)
		}
	}
	st := NumericStats{Count: len(vals)}
	if len(vals) == 0 {
		return st
	}
	sort.Float64s(vals)

	var sum, sumSq float64
	for _, v := range vals {
		sum += v
		sumSq += v * v
	}
	n := float64(len(vals))
	st.Mean = sum / n
	if len(vals) > 1 {
		variance := (sumSq - sum*sum/n) / (n - 1)
		if variance > 0 {
			st.Std = math.Sqrt(variance)
		}
	}
	st.Min = vals[0]
	st.Max = vals[len(vals)-1]
	st.Q25 = quantile(vals, 0.25)
	st.Median = quantile(vals, 0.5)
	st.Q75 = quantile(vals, 0.75)
	return st
}

// quantile interpolates linearly between order statistics of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// TopValue is one entry of a categorical frequency ranking.
type TopValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats describes one categorical column.
type CategoricalStats struct {
	UniqueCount int        `json:"unique_count"`
	TopValues   []TopValue `json:"top_values"`
	NullCount   int        `json:"null_count"`
}

// CategoricalSummary covers every categorical column of the dataset.
type CategoricalSummary struct {
	CategoricalColumns []string                    `json:"categorical_columns"`
	Stats              map[string]CategoricalStats `json:"stats"`
}

func Categorical(ds *dataset.Dataset, topK int) CategoricalSummary {
	out := CategoricalSummary{CategoricalColumns: []string{}, Stats: make(map[string]CategoricalStats)}
	for i := range ds.Columns {
		col := &ds.Columns[i]
		if col.Kind != dataset.KindCategorical {
			continue
		}
		out.CategoricalColumns = append(out.CategoricalColumns, col.Name)
		out.Stats[col.Name] = describeCategorical(col, topK)
	}
	return out
}

func describeCategorical(col *dataset.Column, topK int) CategoricalStats {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	nulls := 0
	for _, v := range col.Values {
		if v.Null {
			nulls++
			continue
		}
		if _, ok := counts[v.Raw]; !ok {
			firstSeen[v.Raw] = order
			order++
		}
		counts[v.Raw]++
	}

	ranked := make([]TopValue, 0, len(counts))
	for val, n := range counts {
		ranked = append(ranked, TopValue{Value: val, Count: n})
	}
	// Frequency descending; ties resolved by first appearance so the ranking
	// is deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Value] < firstSeen[ranked[j].Value]
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return CategoricalStats{
		UniqueCount: len(counts),
		TopValues:   ranked,
		NullCount:   nulls,
	}
}

// Summary is the full descriptive bundle used by the report composer and the
// HTTP service.
type Summary struct {
	Basic       BasicStats         `json:"basic_stats"`
	Missing     MissingInfo        `json:"missing_info"`
	Numeric     NumericSummary     `json:"numeric"`
	Categorical CategoricalSummary `json:"categorical"`
	NumRows     int                `json:"n_rows"`
	NumCols     int                `json:"n_cols"`
}

func Summarize(ds *dataset.Dataset, topK int) Summary {
	return Summary{
		Basic:       Basic(ds),
		Missing:     Missing(ds),
		Numeric:     Numeric(ds),
		Categorical: Categorical(ds, topK),
		NumRows:     ds.NumRows(),
		NumCols:     ds.NumCols(),
	}
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
