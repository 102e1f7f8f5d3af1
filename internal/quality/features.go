package quality

import "math"

// Features are pre-aggregated dataset statistics — the input shape for
// callers that hold a summary but not the raw table.
type Features struct {
	NumRows         int     `json:"n_rows"`
	NumCols         int     `json:"n_cols"`
	MaxMissingShare float64 `json:"max_missing_share"`
	NumericCols     int     `json:"numeric_cols"`
	CategoricalCols int     `json:"categorical_cols"`
}

// FeatureVerdict is the coarse outcome of the aggregate scoring path.
type FeatureVerdict struct {
	Score float64
	OK    bool
	Flags map[string]bool
}

// EvaluateFeatures scores pre-aggregated features on [0,1]. This path and
// Evaluate are intentionally different algorithms answering a similar
// question from different input shapes: one is column-level, the other is
// coarser. They must not be unified.
func EvaluateFeatures(f Features) FeatureVerdict {
	score := 1.0

	score -= f.MaxMissingShare

	if f.NumRows < 1000 {
		score -= 0.2
	}
	if f.NumCols > 100 {
		score -= 0.1
	}
	if f.NumericCols == 0 && f.CategoricalCols > 0 {
		score -= 0.1
	}
	if f.CategoricalCols == 0 && f.NumericCols > 0 {
		score -= 0.05
	}

	score = math.Max(0.0, math.Min(1.0, score))

	return FeatureVerdict{
		Score: score,
		OK:    score >= 0.7,
		Flags: map[string]bool{
			"too_few_rows":           f.NumRows < 1000,
			"too_many_columns":       f.NumCols > 100,
			"too_many_missing":       f.MaxMissingShare > 0.5,
			"no_numeric_columns":     f.NumericCols == 0,
			"no_categorical_columns": f.CategoricalCols == 0,
		},
	}
}
