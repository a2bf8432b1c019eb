package dashboard

import (
	"testing"
	"time"
)

func TestBoundsPresets(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if _, _, bounded := (DateRange{Preset: RangeAll}).Bounds(now); bounded {
		t.Fatal("the all preset must be unbounded")
	}
	if _, _, bounded := (DateRange{}).Bounds(now); bounded {
		t.Fatal("an empty preset defaults to all")
	}

	from, to, bounded := (DateRange{Preset: Range7D}).Bounds(now)
	if !bounded || !from.Equal(now.AddDate(0, 0, -7)) || !to.Equal(now) {
		t.Fatalf("7d window wrong: from=%s to=%s", from, to)
	}

	from, _, bounded = (DateRange{Preset: Range6M}).Bounds(now)
	if !bounded || !from.Equal(now.AddDate(0, -6, 0)) {
		t.Fatalf("6m window wrong: from=%s", from)
	}
}

func TestBoundsCustom(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	gotFrom, gotTo, bounded := (DateRange{Preset: RangeCustom, From: from}).Bounds(now)
	if !bounded || !gotFrom.Equal(from) || !gotTo.Equal(now) {
		t.Fatalf("open-ended custom range should close at now, got from=%s to=%s", gotFrom, gotTo)
	}

	if _, _, bounded := (DateRange{Preset: RangeCustom}).Bounds(now); bounded {
		t.Fatal("custom range without endpoints must be unbounded")
	}
}

func TestFilterItemsWindow(t *testing.T) {
	now := time.Now()
	items := []Item{
		{"id": 1, "createdAt": now.AddDate(0, 0, -2).Format(time.RFC3339)},
		{"id": 2, "createdAt": now.AddDate(0, 0, -40).Format(time.RFC3339)},
	}
	filtered := (DateRange{Preset: Range7D}).FilterItems(items, "")
	if len(filtered) != 1 || filtered[0]["id"] != 1 {
		t.Fatalf("expected only the recent item, got %#v", filtered)
	}
}

func TestFilterItemsFailsOpen(t *testing.T) {
	items := []Item{
		{"id": 1, "createdAt": "not a date"},
		{"id": 2},
	}
	filtered := (DateRange{Preset: Range30D}).FilterItems(items, "")
	if len(filtered) != 2 {
		t.Fatalf("items with missing or unparseable dates must pass the filter, got %d", len(filtered))
	}
}

func TestFilterItemsEpochFormats(t *testing.T) {
	now := time.Now()
	items := []Item{
		{"id": "sec", "createdAt": float64(now.AddDate(0, 0, -1).Unix())},
		{"id": "ms", "createdAt": float64(now.AddDate(0, 0, -1).UnixMilli())},
		{"id": "old", "createdAt": float64(now.AddDate(-2, 0, 0).Unix())},
	}
	filtered := (DateRange{Preset: Range7D}).FilterItems(items, "")
	if len(filtered) != 2 {
		t.Fatalf("expected both epoch precisions inside the window, got %#v", filtered)
	}
}

func TestDateRangeKey(t *testing.T) {
	if (DateRange{}).Key() != "all" {
		t.Fatalf("empty preset key: %s", (DateRange{}).Key())
	}
	if (DateRange{Preset: Range30D}).Key() != "30d" {
		t.Fatal("preset key should be the preset")
	}
	from := time.Unix(100, 0)
	to := time.Unix(200, 0)
	a := DateRange{Preset: RangeCustom, From: from, To: to}.Key()
	b := DateRange{Preset: RangeCustom, From: from, To: to.Add(time.Second)}.Key()
	if a == b {
		t.Fatal("custom keys must reflect the endpoints")
	}
}
