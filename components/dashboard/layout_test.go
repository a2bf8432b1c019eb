package dashboard

import (
	"reflect"
	"testing"
)

func kpiWidget(id string) Widget {
	return Widget{
		ID:         id,
		Type:       TypeKPI,
		DataSource: SourceSales,
		Metric:     MetricCount,
		Layout:     WidgetLayout{W: 3, H: 2},
	}
}

func chartWidget(id string, x, y, w, h int) Widget {
	return Widget{
		ID:         id,
		Type:       TypeBar,
		DataSource: SourceSales,
		Metric:     MetricStatusBreakdown,
		Layout:     WidgetLayout{X: x, Y: y, W: w, H: h},
	}
}

func TestPlacementsLargestBreakpointPassesThrough(t *testing.T) {
	widgets := []Widget{
		chartWidget("a", 0, 0, 6, 4),
		chartWidget("b", 6, 0, 6, 4),
	}
	placements := Placements(widgets, false)[BreakpointLG]
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	if placements[0].X != 0 || placements[0].W != 6 || placements[1].X != 6 {
		t.Fatalf("stored rectangles were not preserved: %#v", placements)
	}
	if !placements[0].Static {
		t.Fatal("expected static placements outside edit mode")
	}
}

func TestPlacementsEditingMakesWidgetsDraggable(t *testing.T) {
	widgets := []Widget{chartWidget("a", 0, 0, 6, 4)}
	for bp, placements := range Placements(widgets, true) {
		for _, p := range placements {
			if p.Static {
				t.Fatalf("breakpoint %s: expected draggable placement in edit mode", bp)
			}
		}
	}
}

func TestPackRowsCompactAlternation(t *testing.T) {
	widgets := []Widget{
		kpiWidget("k1"), kpiWidget("k2"), kpiWidget("k3"), kpiWidget("k4"),
	}
	placements := Placements(widgets, false)[BreakpointMD]

	want := []struct{ x, y, w int }{
		{0, 0, 5},
		{5, 0, 4},
		{0, 2, 5},
		{5, 2, 4},
	}
	for i, expect := range want {
		got := placements[i]
		if got.X != expect.x || got.Y != expect.y || got.W != expect.w {
			t.Fatalf("widget %d: got (%d,%d,w%d), want (%d,%d,w%d)",
				i, got.X, got.Y, got.W, expect.x, expect.y, expect.w)
		}
	}
}

func TestPackRowsWideWidgetFillsRow(t *testing.T) {
	widgets := []Widget{
		kpiWidget("k1"),
		chartWidget("c1", 0, 0, 6, 4),
	}
	placements := Placements(widgets, false)[BreakpointMD]

	// The chart does not fit next to the 5-wide kpi on a 9-column grid, so it
	// wraps to its own full-width row.
	chart := placements[1]
	if chart.X != 0 || chart.Y != 2 || chart.W != 9 {
		t.Fatalf("expected chart at (0,2) spanning 9 columns, got %#v", chart)
	}
	if chart.H < 3 {
		t.Fatalf("expected wide widgets to keep a minimum height of 3, got %d", chart.H)
	}
}

func TestPackRowsCompactShareResetsAfterWideWidget(t *testing.T) {
	widgets := []Widget{
		kpiWidget("k1"),
		chartWidget("c1", 0, 0, 6, 4),
		kpiWidget("k2"),
		kpiWidget("k3"),
	}
	placements := Placements(widgets, false)[BreakpointMD]

	// The chart wraps to its own row, so k2 opens a fresh row and must take
	// the larger share again; k3 packs beside it with the smaller one.
	k2, k3 := placements[2], placements[3]
	if k2.X != 0 || k2.W != 5 {
		t.Fatalf("row-opening kpi after the chart: %#v", k2)
	}
	if k3.X != 5 || k3.W != 4 {
		t.Fatalf("its row partner: %#v", k3)
	}
}

func TestPlacementsIdempotent(t *testing.T) {
	widgets := []Widget{
		kpiWidget("k1"), kpiWidget("k2"),
		chartWidget("c1", 0, 2, 6, 4),
		chartWidget("c2", 6, 2, 6, 4),
	}
	first := Placements(widgets, false)
	second := Placements(widgets, false)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recomputing from the same widget list must not drift:\n%#v\n%#v", first, second)
	}
}

func TestStackSingleColumn(t *testing.T) {
	widgets := []Widget{kpiWidget("k1"), chartWidget("c1", 3, 0, 6, 4)}
	placements := Placements(widgets, false)[BreakpointXXS]
	for i, p := range placements {
		if p.X != 0 || p.W != 2 {
			t.Fatalf("widget %d: expected full-width single column, got %#v", i, p)
		}
		if p.Y != i*4 {
			t.Fatalf("widget %d: expected y=%d, got %d", i, i*4, p.Y)
		}
	}
}

func TestOverlaps(t *testing.T) {
	base := WidgetLayout{X: 0, Y: 0, W: 4, H: 2}
	cases := []struct {
		name  string
		other WidgetLayout
		want  bool
	}{
		{"identical", WidgetLayout{X: 0, Y: 0, W: 4, H: 2}, true},
		{"partial", WidgetLayout{X: 2, Y: 1, W: 4, H: 2}, true},
		{"touching right edge", WidgetLayout{X: 4, Y: 0, W: 4, H: 2}, false},
		{"touching bottom edge", WidgetLayout{X: 0, Y: 2, W: 4, H: 2}, false},
		{"disjoint", WidgetLayout{X: 8, Y: 6, W: 2, H: 2}, false},
	}
	for _, tc := range cases {
		if got := Overlaps(base, tc.other); got != tc.want {
			t.Errorf("%s: Overlaps=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFindFreePositionEmptyGrid(t *testing.T) {
	got := FindFreePosition(3, 2, nil)
	want := WidgetLayout{X: 0, Y: 0, W: 3, H: 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("first widget goes top-left: %+v", got)
	}
}

func TestFindFreePositionFillsGaps(t *testing.T) {
	existing := []WidgetLayout{
		{X: 0, Y: 0, W: 6, H: 2},
		{X: 6, Y: 0, W: 3, H: 2},
	}
	got := FindFreePosition(3, 2, existing)
	want := WidgetLayout{X: 9, Y: 0, W: 3, H: 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected gap at %+v, got %+v", want, got)
	}
}

func TestFindFreePositionAppendsBelow(t *testing.T) {
	existing := []WidgetLayout{{X: 0, Y: 0, W: 12, H: 4}}
	got := FindFreePosition(6, 3, existing)
	if got.Y != 4 || got.X != 0 {
		t.Fatalf("expected placement below occupied rows, got %+v", got)
	}
}

func TestCompactVerticallyRemovesEmptyRows(t *testing.T) {
	rects := []WidgetLayout{
		{X: 0, Y: 3, W: 6, H: 2},
		{X: 6, Y: 5, W: 6, H: 2},
	}
	compacted := CompactVertically(rects)
	if compacted[0].Y != 0 {
		t.Fatalf("expected first rect pulled to the top, got y=%d", compacted[0].Y)
	}
	if compacted[1].Y != 0 {
		t.Fatalf("expected non-overlapping columns to compact independently, got y=%d", compacted[1].Y)
	}
}

func TestCompactVerticallyPreservesStacking(t *testing.T) {
	rects := []WidgetLayout{
		{X: 0, Y: 2, W: 6, H: 2},
		{X: 0, Y: 6, W: 6, H: 2},
	}
	compacted := CompactVertically(rects)
	if compacted[0].Y != 0 || compacted[1].Y != 2 {
		t.Fatalf("expected stack at y=0 and y=2, got %+v", compacted)
	}
}

func TestBreakpointForWidth(t *testing.T) {
	cases := map[int]Breakpoint{
		1200: BreakpointLG,
		900:  BreakpointLG,
		899:  BreakpointMD,
		700:  BreakpointMD,
		600:  BreakpointSM,
		400:  BreakpointXS,
		200:  BreakpointXXS,
	}
	for px, want := range cases {
		if got := BreakpointForWidth(px); got != want {
			t.Errorf("width %d: got %s, want %s", px, got, want)
		}
	}
}
