package dashboard

import "sort"

// Breakpoint is a named responsive width tier with its own column count.
type Breakpoint string

// Responsive breakpoints, largest first.
const (
	BreakpointLG  Breakpoint = "lg"
	BreakpointMD  Breakpoint = "md"
	BreakpointSM  Breakpoint = "sm"
	BreakpointXS  Breakpoint = "xs"
	BreakpointXXS Breakpoint = "xxs"
)

// GridColumns is the column count of the largest breakpoint; stored widget
// layouts are expressed in this coordinate system.
const GridColumns = 12

var breakpointColumns = map[Breakpoint]int{
	BreakpointLG:  12,
	BreakpointMD:  9,
	BreakpointSM:  6,
	BreakpointXS:  4,
	BreakpointXXS: 2,
}

var breakpointMinWidths = []struct {
	bp  Breakpoint
	min int
}{
	{BreakpointLG, 900},
	{BreakpointMD, 700},
	{BreakpointSM, 500},
	{BreakpointXS, 380},
	{BreakpointXXS, 0},
}

// compactWidths gives the per-breakpoint column widths for compact widgets,
// alternating so pairs fill odd column totals. The first compact widget of a
// pair always gets the larger share.
var compactWidths = map[Breakpoint][2]int{
	BreakpointMD: {5, 4},
	BreakpointSM: {3, 3},
	BreakpointXS: {2, 2},
}

const wideMinHeight = 3

// Columns returns the column count for a breakpoint.
func Columns(bp Breakpoint) int {
	if cols, ok := breakpointColumns[bp]; ok {
		return cols
	}
	return GridColumns
}

// Breakpoints returns all breakpoints ordered largest to smallest.
func Breakpoints() []Breakpoint {
	return []Breakpoint{BreakpointLG, BreakpointMD, BreakpointSM, BreakpointXS, BreakpointXXS}
}

// BreakpointForWidth maps a viewport pixel width onto a breakpoint.
func BreakpointForWidth(px int) Breakpoint {
	for _, entry := range breakpointMinWidths {
		if px >= entry.min {
			return entry.bp
		}
	}
	return BreakpointXXS
}

// Placement is a widget's concrete rectangle at one breakpoint. Static
// placements cannot be dragged or resized.
type Placement struct {
	WidgetID string `json:"i"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	MinW     int    `json:"minW,omitempty"`
	MinH     int    `json:"minH,omitempty"`
	Static   bool   `json:"static"`
}

// IsCompact reports whether the widget packs at reduced width on small
// breakpoints.
func (w Widget) IsCompact() bool {
	return w.Type == TypeKPI || w.Type == TypeSparkline
}

// Placements computes the per-breakpoint grid placement for an ordered widget
// list. It is a pure function of the list and the editing flag: recomputing
// with the same inputs yields identical results.
func Placements(widgets []Widget, isEditing bool) map[Breakpoint][]Placement {
	out := make(map[Breakpoint][]Placement, len(breakpointColumns))
	out[BreakpointLG] = placementsLG(widgets, isEditing)
	for _, bp := range []Breakpoint{BreakpointMD, BreakpointSM, BreakpointXS} {
		out[bp] = packRows(widgets, bp, isEditing)
	}
	out[BreakpointXXS] = stackSingleColumn(widgets, isEditing)
	return out
}

// placementsLG passes the stored rectangles through verbatim.
func placementsLG(widgets []Widget, isEditing bool) []Placement {
	out := make([]Placement, len(widgets))
	for i, w := range widgets {
		out[i] = Placement{
			WidgetID: w.ID,
			X:        w.Layout.X,
			Y:        w.Layout.Y,
			W:        w.Layout.W,
			H:        w.Layout.H,
			MinW:     w.Layout.MinW,
			MinH:     w.Layout.MinH,
			Static:   !isEditing,
		}
	}
	return out
}

// packRows re-flows widgets left-to-right, top-to-bottom for the intermediate
// breakpoints. Compact widgets pack two per row at fixed alternating widths;
// wide widgets fill the remaining row width.
func packRows(widgets []Widget, bp Breakpoint, isEditing bool) []Placement {
	cols := Columns(bp)
	widths := compactWidths[bp]
	out := make([]Placement, 0, len(widgets))

	curX, curY, rowH := 0, 0, 0
	for _, w := range widgets {
		var width, height int
		if w.IsCompact() {
			// The compact widget opening a row takes the larger share, its row
			// partner the smaller one, so pairs fill odd column totals.
			if curX == 0 {
				width = widths[0]
			} else {
				width = widths[1]
			}
			height = w.Layout.H
			if height <= 0 {
				height = 2
			}
		} else {
			width = w.Layout.W
			if width > cols {
				width = cols
			}
			if remaining := cols - curX; width < remaining {
				width = remaining
			}
			height = w.Layout.H
			if height < wideMinHeight {
				height = wideMinHeight
			}
		}
		if curX+width > cols {
			curX = 0
			curY += rowH
			rowH = height
			if w.IsCompact() {
				width = widths[0]
			} else {
				width = cols
			}
		}
		out = append(out, Placement{
			WidgetID: w.ID,
			X:        curX,
			Y:        curY,
			W:        width,
			H:        height,
			MinW:     minInt(w.Layout.MinW, cols),
			MinH:     w.Layout.MinH,
			Static:   !isEditing,
		})
		curX += width
		if height > rowH {
			rowH = height
		}
		if curX >= cols {
			curX = 0
			curY += rowH
			rowH = 0
		}
	}
	return out
}

// stackSingleColumn lays widgets out as a crude stacked list on the smallest
// breakpoint: full width, y spaced by ordinal index.
func stackSingleColumn(widgets []Widget, isEditing bool) []Placement {
	cols := Columns(BreakpointXXS)
	out := make([]Placement, len(widgets))
	for i, w := range widgets {
		height := w.Layout.H
		if height <= 0 {
			height = 4
		}
		out[i] = Placement{
			WidgetID: w.ID,
			X:        0,
			Y:        i * 4,
			W:        cols,
			H:        height,
			MinW:     minInt(w.Layout.MinW, cols),
			MinH:     w.Layout.MinH,
			Static:   !isEditing,
		}
	}
	return out
}

// Overlaps reports whether two grid rectangles intersect.
func Overlaps(a, b WidgetLayout) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

// FindFreePosition scans rows then columns for the first rectangle of the
// requested size that does not intersect any existing rectangle. It never
// fails: when no gap fits within the occupied rows it appends below
// everything. Callers clamp malformed dimensions before insertion.
func FindFreePosition(w, h int, existing []WidgetLayout) WidgetLayout {
	maxY := 0
	for _, e := range existing {
		if bottom := e.Y + e.H; bottom > maxY {
			maxY = bottom
		}
	}
	for y := 0; y <= maxY; y++ {
		for x := 0; x <= GridColumns-w; x++ {
			candidate := WidgetLayout{X: x, Y: y, W: w, H: h}
			if !overlapsAny(candidate, existing) {
				return candidate
			}
		}
	}
	return WidgetLayout{X: 0, Y: maxY, W: w, H: h}
}

func overlapsAny(candidate WidgetLayout, existing []WidgetLayout) bool {
	for _, e := range existing {
		if Overlaps(candidate, e) {
			return true
		}
	}
	return false
}

// CompactVertically removes empty rows above each rectangle within its column
// span, preserving relative order. The result aligns with the grid library's
// vertical compaction after a drag/resize.
func CompactVertically(rects []WidgetLayout) []WidgetLayout {
	order := make([]int, len(rects))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := rects[order[a]], rects[order[b]]
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.X < rb.X
	})

	out := make([]WidgetLayout, len(rects))
	copy(out, rects)
	var placed []WidgetLayout
	for _, idx := range order {
		rect := out[idx]
		for rect.Y > 0 {
			probe := rect
			probe.Y--
			if overlapsAny(probe, placed) {
				break
			}
			rect = probe
		}
		out[idx] = rect
		placed = append(placed, rect)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
