package virtual

import (
	"slices"
	"testing"
)

func indexes(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index
	}
	return out
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		viewport   int
		wantIdx    []int
		wantBefore int
		wantAfter  int
	}{
		{
			name:      "top",
			offset:    0,
			viewport:  30,
			wantIdx:   []int{0, 1, 2, 3, 4},
			wantAfter: 950,
		},
		{
			name:       "middle",
			offset:     95,
			viewport:   30,
			wantIdx:    []int{7, 8, 9, 10, 11, 12, 13, 14},
			wantBefore: 70,
			wantAfter:  850,
		},
		{
			name:       "bottom",
			offset:     980,
			viewport:   30,
			wantIdx:    []int{96, 97, 98, 99},
			wantBefore: 960,
		},
		{
			name:       "past the end",
			offset:     5000,
			viewport:   30,
			wantIdx:    []int{97, 98, 99},
			wantBefore: 970,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(Options{Count: 100, EstimateSize: func(int) int { return 10 }, Overscan: 2})
			v.Scroll(tt.offset, tt.viewport)

			w := v.Window()
			if got := indexes(w.Items); !slices.Equal(got, tt.wantIdx) {
				t.Errorf("Items = %v, want %v", got, tt.wantIdx)
			}
			if w.Before != tt.wantBefore || w.After != tt.wantAfter {
				t.Errorf("padding = (%d, %d), want (%d, %d)", w.Before, w.After, tt.wantBefore, tt.wantAfter)
			}
			if w.Total != 1000 {
				t.Errorf("Total = %d, want 1000", w.Total)
			}
			// Padding plus rendered items always spans the full extent
			rendered := w.Items[len(w.Items)-1].End - w.Items[0].Start
			if w.Before+rendered+w.After != w.Total {
				t.Errorf("Before + rendered + After = %d, want %d", w.Before+rendered+w.After, w.Total)
			}
		})
	}
}

func TestLayout_PaddingAndGap(t *testing.T) {
	v := New(Options{
		Count:        3,
		EstimateSize: func(int) int { return 10 },
		PaddingStart: 4,
		PaddingEnd:   6,
		Gap:          5,
	})
	v.Scroll(0, 100)

	items := v.Items()
	wantStarts := []int{4, 19, 34}
	for i, it := range items {
		if it.Start != wantStarts[i] || it.End != wantStarts[i]+10 {
			t.Errorf("item %d = %+v, want start %d", i, it, wantStarts[i])
		}
	}
	if got := v.TotalSize(); got != 50 {
		t.Errorf("TotalSize() = %d, want 50", got)
	}
}

func TestMeasure(t *testing.T) {
	v := New(Options{Count: 10, EstimateSize: func(int) int { return 20 }})
	v.Scroll(0, 50)

	if !v.Measure(0, 60) {
		t.Fatal("Measure() = false for a new size")
	}
	if v.Measure(0, 60) {
		t.Error("Measure() = true for an unchanged size")
	}
	if got := v.TotalSize(); got != 240 {
		t.Errorf("TotalSize() after measure = %d, want 240", got)
	}
	first, last, ok := v.Range()
	if !ok || first != 0 || last != 0 {
		t.Errorf("Range() = (%d, %d, %v), want only item 0", first, last, ok)
	}

	v.ResetMeasurements()
	if got := v.TotalSize(); got != 200 {
		t.Errorf("TotalSize() after reset = %d, want 200", got)
	}

	if v.Measure(20, 5) || v.Measure(-1, 5) || v.Measure(1, 0) {
		t.Error("Measure() accepted an out of range index or size")
	}
}

func TestMeasure_Disabled(t *testing.T) {
	v := New(Options{Count: 5, DisableMeasure: true})
	if v.Measure(0, 100) {
		t.Error("Measure() = true with measurement disabled")
	}
	if got := v.TotalSize(); got != 5*DefaultRowEstimate {
		t.Errorf("TotalSize() = %d, want %d", got, 5*DefaultRowEstimate)
	}
}

func TestSetCount(t *testing.T) {
	v := New(Options{Count: 10, EstimateSize: Sizes([]int{10})})
	v.Measure(9, 50)
	v.SetCount(5)
	if got := v.TotalSize(); got != 50 {
		t.Errorf("TotalSize() after shrink = %d, want 50", got)
	}
	v.SetCount(10)
	if got := v.TotalSize(); got != 100 {
		t.Errorf("TotalSize() after grow = %d, want 100 (old measurement dropped)", got)
	}
}

func TestEmpty(t *testing.T) {
	v := New(Options{PaddingStart: 8, PaddingEnd: 8})
	v.Scroll(0, 100)

	w := v.Window()
	if len(w.Items) != 0 {
		t.Errorf("Items = %v, want none", w.Items)
	}
	if w.Total != 16 || w.After != 16 {
		t.Errorf("Window() = %+v, want total and after 16", w)
	}
	if _, _, ok := v.Range(); ok {
		t.Error("Range() ok for an empty list")
	}
}

func TestColumns(t *testing.T) {
	sizes := []int{40, 150, 150, 200, 150, 150}
	v := New(Options{Count: len(sizes), EstimateSize: Sizes(sizes), Overscan: 1})
	v.Scroll(200, 300)

	// Columns 2 and 3 intersect [200, 500); one extra on each side
	if got := indexes(v.Items()); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("Items = %v, want [1 2 3 4]", got)
	}
}

func TestDynamicMeasurement(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0", false},
		{"Mozilla/5.0 (Macintosh) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := DynamicMeasurement(tt.ua); got != tt.want {
			t.Errorf("DynamicMeasurement(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}
