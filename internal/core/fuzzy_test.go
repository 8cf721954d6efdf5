package core

import (
	"errors"
	"testing"
	"time"
)

func TestRankItem_Tiers(t *testing.T) {
	tests := []struct {
		value string
		query string
		want  Rank
	}{
		{"Tanner", "Tanner", RankCaseSensitiveEqual},
		{"Tanner", "tanner", RankEqual},
		{"Tanner", "tan", RankStartsWith},
		{"Mary Ann", "ann", RankWordStartsWith},
		{"Xannax", "ann", RankContains},
		{"north-west lake", "nwl", RankAcronym},
		{"Café", "cafe", RankEqual},
		{"Tanner", "x", RankNoMatch},
		{"ab", "abc", RankNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.value+"/"+tt.query, func(t *testing.T) {
			got := RankItem(tt.value, tt.query)
			if got.Rank != tt.want {
				t.Errorf("RankItem(%q, %q).Rank = %v, want %v", tt.value, tt.query, got.Rank, tt.want)
			}
			if got.Passed != (tt.want >= RankMatches) {
				t.Errorf("RankItem(%q, %q).Passed = %v", tt.value, tt.query, got.Passed)
			}
		})
	}
}

func TestRankItem_Closeness(t *testing.T) {
	tight := RankItem("karenina", "kare")
	if tight.Rank != RankStartsWith {
		t.Fatalf("RankItem(karenina, kare) = %v, want StartsWith", tight.Rank)
	}

	loose := RankItem("karenina", "krnn")
	tighter := RankItem("karn", "krn")
	for _, r := range []Ranking{loose, tighter} {
		if !r.Passed || r.Rank < RankMatches || r.Rank >= RankAcronym {
			t.Errorf("closeness rank = %v, want within [Matches, Acronym)", r.Rank)
		}
	}
	if tighter.Rank <= loose.Rank {
		t.Errorf("tighter match %v should rank above looser match %v", tighter.Rank, loose.Rank)
	}
	if got := RankItem("karenina", "nk"); got.Passed {
		t.Errorf("out of order characters passed with rank %v", got.Rank)
	}
}

func TestRankItemWithThreshold(t *testing.T) {
	if got := RankItemWithThreshold("Tanner", "tan", RankEqual); got.Passed {
		t.Error("StartsWith passed an Equal threshold")
	}
	if got := RankItemWithThreshold("Tanner", "tanner", RankEqual); !got.Passed {
		t.Error("Equal failed an Equal threshold")
	}
}

func TestCompareRankings(t *testing.T) {
	better := Ranking{Rank: RankEqual, Passed: true}
	worse := Ranking{Rank: RankContains, Passed: true}
	if got := CompareRankings(better, worse); got != -1 {
		t.Errorf("CompareRankings(better, worse) = %d, want -1", got)
	}
	if got := CompareRankings(worse, better); got != 1 {
		t.Errorf("CompareRankings(worse, better) = %d, want 1", got)
	}
	if got := CompareRankings(better, better); got != 0 {
		t.Errorf("CompareRankings(equal) = %d, want 0", got)
	}
}

func TestFuzzyFilter(t *testing.T) {
	if !FuzzyFilter("anything", "") {
		t.Error("empty query should pass")
	}
	if !FuzzyFilter(42, "42") {
		t.Error("number cell should match its text")
	}
	if FuzzyFilter("Tanner", "zzz") {
		t.Error("unrelated query should not pass")
	}
}

func TestCompareAlphanumeric(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"row2", "row10", -1},
		{"row10", "row2", 1},
		{"Row2", "row02", 0},
		{"apple", "Banana", -1},
		{"abc", "ab", 1},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := CompareAlphanumeric(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareAlphanumeric(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareValues(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"nil first", nil, 1, -1},
		{"both nil", nil, nil, 0},
		{"numbers by magnitude", 9, 10, -1},
		{"mixed numeric kinds", 2.5, int64(2), 1},
		{"times", late, early, 1},
		{"bools", false, true, -1},
		{"strings alphanumeric", "item9", "item10", -1},
		{"numeric strings compare naturally", "9", "10", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareValues(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"int", 42, "42"},
		{"whole float", 3.0, "3"},
		{"fraction", 3.14159, "3.14"},
		{"bool", true, "Yes"},
		{"time", ts, "2024-03-09"},
		{"time pointer", &ts, "2024-03-09"},
		{"nil time pointer", (*time.Time)(nil), ""},
		{"zero time", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange(" 5 ", "")
	if err != nil {
		t.Fatalf("ParseRange() error = %v", err)
	}
	if r.Min == nil || *r.Min != 5 || r.Max != nil {
		t.Errorf("ParseRange(5, \"\") = %+v, want min 5 and no max", r)
	}
	if !r.Contains(5) || r.Contains(4.99) || !r.Contains(1e9) {
		t.Error("Range.Contains is not inclusive and unbounded above")
	}

	if _, err := ParseRange("x", ""); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("ParseRange(x) error = %v, want ErrInvalidFilter", err)
	}
	if r, _ := ParseRange("", ""); !r.IsZero() {
		t.Errorf("ParseRange(empty) = %+v, want zero", r)
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("ParseDateRange() error = %v", err)
	}
	endOfDay := time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)
	if !r.Contains(endOfDay) {
		t.Error("DateRange.Contains excludes a time on the last day")
	}
	if r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("DateRange.Contains includes the day after")
	}

	if _, err := ParseDateRange("01/02/2024", ""); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("ParseDateRange(bad) error = %v, want ErrInvalidFilter", err)
	}
}

func TestMatchingPredicates(t *testing.T) {
	if !IncludesString("Hello World", " world") {
		t.Error("IncludesString should ignore case and trim the query")
	}
	if EqualsString("single", "sing") {
		t.Error("EqualsString matched a prefix")
	}
	if InNumberRange("n/a", Range{}) {
		t.Error("InNumberRange passed a non-numeric value")
	}
	if !InDateRange("2024-05-05", DateRange{From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}) {
		t.Error("InDateRange should parse date strings")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	calls := make(chan int, 3)

	for i := 1; i <= 3; i++ {
		d.Do(func() { calls <- i })
	}

	select {
	case got := <-calls:
		if got != 3 {
			t.Errorf("debounced call = %d, want 3", got)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced function never ran")
	}

	select {
	case got := <-calls:
		t.Errorf("extra call %d ran", got)
	case <-time.After(60 * time.Millisecond):
	}

	d.Do(func() { calls <- 4 })
	if !d.Stop() {
		t.Error("Stop() = false with a pending call")
	}
	select {
	case <-calls:
		t.Error("stopped call ran")
	case <-time.After(60 * time.Millisecond):
	}

	if got := NewDebouncer(0).Delay(); got != DefaultDebounce {
		t.Errorf("NewDebouncer(0).Delay() = %v, want %v", got, DefaultDebounce)
	}
}

func TestSetGlobalFilterDebounced(t *testing.T) {
	tbl := newTestTable(t)
	tbl.SetGlobalFilterDebounced("jo", 10*time.Millisecond)
	tbl.SetGlobalFilterDebounced("joe", 10*time.Millisecond)

	if got := tbl.GlobalFilter(); got != "" {
		t.Errorf("GlobalFilter() before delay = %q, want empty", got)
	}

	deadline := time.Now().Add(time.Second)
	for tbl.GlobalFilter() != "joe" {
		if time.Now().After(deadline) {
			t.Fatalf("GlobalFilter() = %q, want joe after delay", tbl.GlobalFilter())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
