// Package viz renders dataset charts as PNG files. Charts consume the raw
// dataset, not the quality report, and never feed back into scoring.
package viz

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"edaqa/internal/dataset"
	"edaqa/internal/summary"
)

const (
	chartWidth  = 900
	chartHeight = 450
	histBins    = 10
)

func renderBars(path, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		return nil
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	return nil
}

// SaveHistograms writes one histogram PNG per numeric column, up to
// maxColumns, and returns the written paths.
func SaveHistograms(ds *dataset.Dataset, dir string, maxColumns int) ([]string, error) {
	var paths []string
	for i := range ds.Columns {
		if maxColumns > 0 && len(paths) >= maxColumns {
			break
		}
		col := &ds.Columns[i]
		if col.Kind != dataset.KindNumeric {
			continue
		}
		bars := histogramBars(col)
		if len(bars) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("hist_%s.png", col.Name))
		if err := renderBars(path, fmt.Sprintf("Histogram: %s", col.Name), bars); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func histogramBars(col *dataset.Column) []chart.Value {
	var vals []float64
	for _, v := range col.Values {
		if v.IsNum {
			vals = append(vals, v.Num)
		}
	}
	if len(vals) == 0 {
		return nil
	}

	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []chart.Value{{Value: float64(len(vals)), Label: fmt.Sprintf("%g", lo)}}
	}

	width := (hi - lo) / histBins
	counts := make([]int, histBins)
	for _, v := range vals {
		b := int((v - lo) / width)
		if b >= histBins {
			b = histBins - 1
		}
		counts[b]++
	}

	bars := make([]chart.Value, histBins)
	for b := 0; b < histBins; b++ {
		bars[b] = chart.Value{
			Value: float64(counts[b]),
			Label: fmt.Sprintf("%.3g", lo+width*float64(b)),
		}
	}
	return bars
}

// SaveMissingBar writes a bar chart of per-column missing percentages.
// Returns "" when the dataset has no missing values at all.
func SaveMissingBar(ds *dataset.Dataset, dir string) (string, error) {
	rows := summary.MissingTable(ds)
	var bars []chart.Value
	anyMissing := false
	for _, r := range rows {
		if r.MissingCount > 0 {
			anyMissing = true
		}
		bars = append(bars, chart.Value{Value: r.MissingPercent, Label: r.Column})
	}
	if !anyMissing {
		return "", nil
	}

	path := filepath.Join(dir, "missing_bar.png")
	if err := renderBars(path, "Missing values (%)", bars); err != nil {
		return "", err
	}
	return path, nil
}

// SaveQuartiles writes a bar chart of q25/median/q75 per numeric column, up
// to maxColumns columns — a coarse stand-in for box plots.
func SaveQuartiles(ds *dataset.Dataset, dir string, maxColumns int) (string, error) {
	num := summary.Numeric(ds)
	var bars []chart.Value
	for i, name := range num.NumericColumns {
		if maxColumns > 0 && i >= maxColumns {
			break
		}
		st := num.Stats[name]
		bars = append(bars,
			chart.Value{Value: st.Q25, Label: name + " q25"},
			chart.Value{Value: st.Median, Label: name + " med"},
			chart.Value{Value: st.Q75, Label: name + " q75"},
		)
	}
	if len(bars) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, "quartiles.png")
	if err := renderBars(path, "Quartiles by column", bars); err != nil {
		return "", err
	}
	return path, nil
}

// SaveCategoryBar writes a frequency chart for the top-N values of one
// categorical column. Returns "" when the column is absent or not
// categorical.
func SaveCategoryBar(ds *dataset.Dataset, colName, dir string, topN int) (string, error) {
	col := ds.Column(colName)
	if col == nil || col.Kind != dataset.KindCategorical {
		return "", nil
	}

	cats := summary.Categorical(ds, topN)
	stats, ok := cats.Stats[colName]
	if !ok || len(stats.TopValues) == 0 {
		return "", nil
	}

	bars := make([]chart.Value, len(stats.TopValues))
	for i, tv := range stats.TopValues {
		bars[i] = chart.Value{Value: float64(tv.Count), Label: tv.Value}
	}

	path := filepath.Join(dir, fmt.Sprintf("category_%s.png", colName))
	if err := renderBars(path, fmt.Sprintf("Top values: %s", colName), bars); err != nil {
		return "", err
	}
	return path, nil
}
