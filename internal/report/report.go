// Package report renders engine output as Markdown and JSON. It holds no
// probe logic of its own — everything here is formatting over fields the
// quality and summary packages already computed.
package report

import (
	"fmt"
	"strings"

	"edaqa/internal/quality"
	"edaqa/internal/summary"
)

// Params carries everything the Markdown composer needs for one report.
type Params struct {
	Title           string
	SourcePath      string
	Summary         summary.Summary
	Quality         *quality.Report
	Problematic     []quality.ProblematicColumn
	MinMissingShare float64
	TopKCategories  int
	MaxHistColumns  int

	// Relative chart paths; empty when a chart was not produced.
	HistogramsChart string
	MissingChart    string
	BoxplotsChart   string
	CategoryChart   string
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// Compose renders the full Markdown report.
func Compose(p Params) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "Source: `%s`\n\n", p.SourcePath)

	b.WriteString("## Basic information\n\n")
	fmt.Fprintf(&b, "- Rows: %d\n", p.Summary.Basic.NumRows)
	fmt.Fprintf(&b, "- Columns: %d\n", p.Summary.Basic.NumCols)
	fmt.Fprintf(&b, "- Memory: %.3f MB\n\n", p.Summary.Basic.MemoryMB)

	q := p.Quality
	b.WriteString("## Data quality\n\n")
	fmt.Fprintf(&b, "**Quality score:** %d/100\n\n", q.QualityScore)
	fmt.Fprintf(&b, "- Duplicate rows: %s (%d)\n", yesNo(q.HasDuplicates), q.DuplicateCount)
	fmt.Fprintf(&b, "- High missing share: %s (%s)\n", yesNo(q.HasHighMissing), joinOrDash(q.HighMissingColumns))
	fmt.Fprintf(&b, "- Constant columns: %s (%s)\n", yesNo(q.HasConstantColumns), joinOrDash(q.ConstantColumns))
	fmt.Fprintf(&b, "- High cardinality: %s (%s)\n", yesNo(q.HasHighCardinalityCategoricals), joinOrDash(q.HighCardinalityColumns))
	fmt.Fprintf(&b, "- Many zero values: %s (%s)\n\n", yesNo(q.HasManyZeroValues), joinOrDash(q.HighZeroColumns))

	b.WriteString("### Analysis parameters\n\n")
	fmt.Fprintf(&b, "- Min missing share: %g\n", p.MinMissingShare)
	fmt.Fprintf(&b, "- Top-K categories: %d\n", p.TopKCategories)
	fmt.Fprintf(&b, "- Max histograms: %d\n\n", p.MaxHistColumns)

	if len(p.Problematic) > 0 {
		b.WriteString("### Problematic columns (by missing share)\n\n")
		for _, pc := range p.Problematic {
			fmt.Fprintf(&b, "- `%s`: %.1f%% missing (%d values)\n",
				pc.Column, pc.MissingShare*100, pc.MissingCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Missing values\n\n")
	fmt.Fprintf(&b, "- Total missing: %d\n", p.Summary.Missing.TotalMissing)
	fmt.Fprintf(&b, "- Columns with missing: %d\n\n", p.Summary.Missing.ColumnsWithMissing)
	if p.MissingChart != "" {
		fmt.Fprintf(&b, "![Missing values](%s)\n\n", p.MissingChart)
	}

	b.WriteString("## Numeric columns\n\n")
	if len(p.Summary.Numeric.NumericColumns) > 0 {
		fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(p.Summary.Numeric.NumericColumns, ", "))
		if p.HistogramsChart != "" {
			fmt.Fprintf(&b, "![Histograms](%s)\n\n", p.HistogramsChart)
		}
		if p.BoxplotsChart != "" {
			fmt.Fprintf(&b, "![Quartiles](%s)\n\n", p.BoxplotsChart)
		}
	} else {
		b.WriteString("No numeric columns detected.\n\n")
	}

	b.WriteString("## Categorical columns\n\n")
	cats := p.Summary.Categorical
	if len(cats.CategoricalColumns) > 0 {
		fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(cats.CategoricalColumns, ", "))
		for _, name := range cats.CategoricalColumns {
			info := cats.Stats[name]
			fmt.Fprintf(&b, "### %s\n\n", name)
			fmt.Fprintf(&b, "- Unique values: %d\n", info.UniqueCount)
			fmt.Fprintf(&b, "- Missing: %d\n", info.NullCount)
			tops := make([]string, len(info.TopValues))
			for i, tv := range info.TopValues {
				tops[i] = fmt.Sprintf("%s (%d)", tv.Value, tv.Count)
			}
			fmt.Fprintf(&b, "- Top-%d: %s\n\n", p.TopKCategories, joinOrDash(tops))
		}
		if p.CategoryChart != "" {
			fmt.Fprintf(&b, "![Top categories](%s)\n\n", p.CategoryChart)
		}
	} else {
		b.WriteString("No categorical columns detected.\n\n")
	}

	return b.String()
}

// Summary is the compact JSON sidecar written next to the Markdown report.
type Summary struct {
	NumRows                int      `json:"n_rows"`
	NumCols                int      `json:"n_cols"`
	QualityScore           int      `json:"quality_score"`
	TotalMissing           int      `json:"total_missing"`
	ProblematicColumns     []string `json:"problematic_columns"`
	HasDuplicates          bool     `json:"has_duplicates"`
	HasConstantColumns     bool     `json:"has_constant_columns"`
	ConstantColumns        []string `json:"constant_columns"`
	HasHighCardinality     bool     `json:"has_high_cardinality"`
	HighCardinalityColumns []string `json:"high_cardinality_columns"`
}

// BuildSummary projects report parameters onto the JSON sidecar shape.
func BuildSummary(p Params) Summary {
	problem := make([]string, len(p.Problematic))
	for i, pc := range p.Problematic {
		problem[i] = pc.Column
	}
	return Summary{
		NumRows:                p.Summary.NumRows,
		NumCols:                p.Summary.NumCols,
		QualityScore:           p.Quality.QualityScore,
		TotalMissing:           p.Summary.Missing.TotalMissing,
		ProblematicColumns:     problem,
		HasDuplicates:          p.Quality.HasDuplicates,
		HasConstantColumns:     p.Quality.HasConstantColumns,
		ConstantColumns:        p.Quality.ConstantColumns,
		HasHighCardinality:     p.Quality.HasHighCardinalityCategoricals,
		HighCardinalityColumns: p.Quality.HighCardinalityColumns,
	}
}
