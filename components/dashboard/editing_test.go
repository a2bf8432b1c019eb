package dashboard

import "testing"

func editableDashboard() Dashboard {
	return Dashboard{
		ID:   1,
		Name: "Test",
		Widgets: []Widget{
			{
				ID:     "a",
				Type:   TypeKPI,
				Layout: WidgetLayout{X: 0, Y: 0, W: 3, H: 2, MinW: 2, MinH: 2, MaxH: 4},
			},
			{
				ID:     "b",
				Type:   TypeBar,
				Layout: WidgetLayout{X: 0, Y: 2, W: 6, H: 4, MinW: 3, MinH: 3},
			},
		},
	}
}

func TestEditSessionIsolatesBuffer(t *testing.T) {
	original := editableDashboard()
	session := NewEditSession(original)

	if err := session.MoveWidget("a", 4, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if original.Widgets[0].Layout.X != 0 {
		t.Fatal("the original must not change")
	}
	if !session.Dirty() {
		t.Fatal("mutations mark the session dirty")
	}
}

func TestMoveWidgetBounds(t *testing.T) {
	session := NewEditSession(editableDashboard())

	if err := session.MoveWidget("a", -1, 0); err == nil {
		t.Fatal("negative x must fail")
	}
	if err := session.MoveWidget("a", 10, 0); err == nil {
		t.Fatal("a 3-wide widget cannot sit at column 10")
	}
	if err := session.MoveWidget("missing", 0, 0); err == nil {
		t.Fatal("unknown widget must fail")
	}
}

func TestResizeWidgetBounds(t *testing.T) {
	session := NewEditSession(editableDashboard())

	if err := session.ResizeWidget("a", 1, 2); err == nil {
		t.Fatal("below MinW must fail")
	}
	if err := session.ResizeWidget("a", 3, 5); err == nil {
		t.Fatal("above MaxH must fail")
	}
	if err := session.ResizeWidget("b", 13, 4); err == nil {
		t.Fatal("wider than the grid must fail")
	}
	if err := session.ResizeWidget("b", 8, 5); err != nil {
		t.Fatalf("valid resize: %v", err)
	}
	if got := session.Dashboard().Widgets[1].Layout; got.W != 8 || got.H != 5 {
		t.Fatalf("resize applied: %+v", got)
	}
}

func TestRemoveWidgetCompacts(t *testing.T) {
	session := NewEditSession(editableDashboard())

	if !session.RemoveWidget("a") {
		t.Fatal("remove known widget")
	}
	if session.RemoveWidget("a") {
		t.Fatal("second removal must report false")
	}

	got := session.Dashboard()
	if len(got.Widgets) != 1 {
		t.Fatalf("widgets: %d", len(got.Widgets))
	}
	if got.Widgets[0].Layout.Y != 0 {
		t.Fatalf("remaining widget must compact upward: %+v", got.Widgets[0].Layout)
	}
}

func TestDiscardRestoresOriginal(t *testing.T) {
	session := NewEditSession(editableDashboard())
	_ = session.MoveWidget("a", 4, 0)
	session.RemoveWidget("b")

	restored := session.Discard()
	if len(restored.Widgets) != 2 || restored.Widgets[0].Layout.X != 0 {
		t.Fatalf("discard reverts: %+v", restored.Widgets)
	}
	if session.Dirty() {
		t.Fatal("discard clears the dirty flag")
	}
}

func TestSnapshotMarksClean(t *testing.T) {
	session := NewEditSession(editableDashboard())
	_ = session.MoveWidget("a", 4, 0)

	snap := session.Snapshot()
	if snap.Widgets[0].Layout.X != 4 {
		t.Fatalf("snapshot carries the buffer: %+v", snap.Widgets[0].Layout)
	}
	if session.Dirty() {
		t.Fatal("snapshot clears the dirty flag")
	}
}

func TestUpdateWidgetKeepsIdentity(t *testing.T) {
	session := NewEditSession(editableDashboard())

	updated := session.Dashboard().Widgets[0]
	updated.TitleCustom = "Renamed"
	if err := session.UpdateWidget(updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := session.Dashboard().Widgets[0]; got.TitleCustom != "Renamed" || got.ID != "a" {
		t.Fatalf("update applied: %+v", got)
	}

	updated.ID = "ghost"
	if err := session.UpdateWidget(updated); err == nil {
		t.Fatal("unknown id must fail")
	}
}
