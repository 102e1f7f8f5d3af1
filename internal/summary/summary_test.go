package summary

import (
	"math"
	"reflect"
	"testing"

	"edaqa/internal/dataset"
)

func mustDataset(t *testing.T, header []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(header, rows)
	if err != nil {
		t.Fatalf("FromRecords() failed: %v", err)
	}
	return ds
}

func TestBasic(t *testing.T) {
	ds := mustDataset(t, []string{"id", "city"}, [][]string{
		{"1", "kazan"},
		{"2", ""},
	})

	stats := Basic(ds)

	if stats.NumRows != 2 || stats.NumCols != 2 {
		t.Errorf("shape = %dx%d, want 2x2", stats.NumRows, stats.NumCols)
	}
	wantTypes := map[string]string{"id": "numeric", "city": "categorical"}
	if !reflect.DeepEqual(stats.DTypes, wantTypes) {
		t.Errorf("DTypes = %v, want %v", stats.DTypes, wantTypes)
	}
	if stats.MemoryMB < 0 {
		t.Errorf("MemoryMB = %v, want >= 0", stats.MemoryMB)
	}
}

func TestMissing(t *testing.T) {
	ds := mustDataset(t, []string{"a", "b", "c"}, [][]string{
		{"1", "", "x"},
		{"", "", "y"},
		{"3", "z", "w"},
		{"4", "z", "v"},
	})

	info := Missing(ds)

	if info.TotalMissing != 3 {
		t.Errorf("TotalMissing = %d, want 3", info.TotalMissing)
	}
	if info.ColumnsWithMissing != 2 {
		t.Errorf("ColumnsWithMissing = %d, want 2", info.ColumnsWithMissing)
	}
	if d := info.Details["a"]; d.Count != 1 || d.Percent != 25 {
		t.Errorf("Details[a] = %+v, want {1 25}", d)
	}
	if d := info.Details["b"]; d.Count != 2 || d.Percent != 50 {
		t.Errorf("Details[b] = %+v, want {2 50}", d)
	}
	if _, ok := info.Details["c"]; ok {
		t.Error("clean column must not appear in Details")
	}
}

func TestMissingTableIncludesCleanColumns(t *testing.T) {
	ds := mustDataset(t, []string{"a", "b"}, [][]string{
		{"1", ""},
		{"2", "y"},
	})

	rows := MissingTable(ds)

	want := []MissingRow{
		{Column: "a", MissingCount: 0, MissingPercent: 0},
		{Column: "b", MissingCount: 1, MissingPercent: 50},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("MissingTable() = %+v, want %+v", rows, want)
	}
}

func TestNumericDescribe(t *testing.T) {
	ds := mustDataset(t, []string{"n", "txt"}, [][]string{
		{"1", "a"}, {"2", "b"}, {"3", "c"}, {"4", "d"},
	})

	num := Numeric(ds)

	if !reflect.DeepEqual(num.NumericColumns, []string{"n"}) {
		t.Fatalf("NumericColumns = %v, want [n]", num.NumericColumns)
	}
	st := num.Stats["n"]
	if st.Count != 4 {
		t.Errorf("Count = %d, want 4", st.Count)
	}
	if st.Mean != 2.5 {
		t.Errorf("Mean = %v, want 2.5", st.Mean)
	}
	// Sample standard deviation of {1,2,3,4}.
	if math.Abs(st.Std-1.2909944487) > 1e-9 {
		t.Errorf("Std = %v, want ~1.29099", st.Std)
	}
	if st.Min != 1 || st.Max != 4 {
		t.Errorf("Min/Max = %v/%v, want 1/4", st.Min, st.Max)
	}
	if st.Q25 != 1.75 || st.Median != 2.5 || st.Q75 != 3.25 {
		t.Errorf("quartiles = %v/%v/%v, want 1.75/2.5/3.25", st.Q25, st.Median, st.Q75)
	}
}

func TestNumericDescribeSkipsNulls(t *testing.T) {
	ds := mustDataset(t, []string{"n"}, [][]string{
		{"10"}, {""}, {"20"},
	})

	st := Numeric(ds).Stats["n"]
	if st.Count != 2 {
		t.Errorf("Count = %d, want 2 (nulls excluded)", st.Count)
	}
	if st.Mean != 15 {
		t.Errorf("Mean = %v, want 15", st.Mean)
	}
}

func TestNumericSingleValue(t *testing.T) {
	ds := mustDataset(t, []string{"n"}, [][]string{{"7"}})

	st := Numeric(ds).Stats["n"]
	if st.Std != 0 {
		t.Errorf("Std of a single value = %v, want 0", st.Std)
	}
	if st.Q25 != 7 || st.Median != 7 || st.Q75 != 7 {
		t.Errorf("quartiles = %v/%v/%v, want all 7", st.Q25, st.Median, st.Q75)
	}
}

func TestCategoricalRanking(t *testing.T) {
	ds := mustDataset(t, []string{"city"}, [][]string{
		{"kazan"}, {"moscow"}, {"kazan"}, {""}, {"spb"}, {"moscow"}, {"kazan"},
	})

	cat := Categorical(ds, 2)
	st := cat.Stats["city"]

	if st.UniqueCount != 3 {
		t.Errorf("UniqueCount = %d, want 3", st.UniqueCount)
	}
	if st.NullCount != 1 {
		t.Errorf("NullCount = %d, want 1", st.NullCount)
	}
	want := []TopValue{{Value: "kazan", Count: 3}, {Value: "moscow", Count: 2}}
	if !reflect.DeepEqual(st.TopValues, want) {
		t.Errorf("TopValues = %+v, want %+v", st.TopValues, want)
	}
}

func TestCategoricalTieOrderDeterministic(t *testing.T) {
	ds := mustDataset(t, []string{"c"}, [][]string{
		{"beta"}, {"alpha"}, {"beta"}, {"alpha"},
	})

	// Equal counts: first-seen value ranks first, on every run.
	for i := 0; i < 5; i++ {
		st := Categorical(ds, 0).Stats["c"]
		want := []TopValue{{Value: "beta", Count: 2}, {Value: "alpha", Count: 2}}
		if !reflect.DeepEqual(st.TopValues, want) {
			t.Fatalf("run %d: TopValues = %+v, want %+v", i, st.TopValues, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	ds := mustDataset(t, []string{"n", "c"}, [][]string{
		{"1", "x"}, {"2", ""},
	})

	s := Summarize(ds, 5)

	if s.NumRows != 2 || s.NumCols != 2 {
		t.Errorf("shape = %dx%d, want 2x2", s.NumRows, s.NumCols)
	}
	if len(s.Numeric.NumericColumns) != 1 || len(s.Categorical.CategoricalColumns) != 1 {
		t.Errorf("column split = %v / %v, want one of each",
			s.Numeric.NumericColumns, s.Categorical.CategoricalColumns)
	}
	if s.Missing.TotalMissing != 1 {
		t.Errorf("TotalMissing = %d, want 1", s.Missing.TotalMissing)
	}
}
