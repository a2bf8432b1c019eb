package dashboard

import (
	"fmt"
	"time"
)

// RangePreset names a relative date window.
type RangePreset string

// Supported presets.
const (
	RangeAll    RangePreset = "all"
	Range7D     RangePreset = "7d"
	Range30D    RangePreset = "30d"
	Range90D    RangePreset = "90d"
	Range6M     RangePreset = "6m"
	Range1Y     RangePreset = "1y"
	RangeCustom RangePreset = "custom"
)

// DateRange is the active dashboard filter: either a preset window ending now,
// or an explicit From/To pair when Preset is RangeCustom.
type DateRange struct {
	Preset RangePreset `json:"preset"`
	From   time.Time   `json:"from,omitempty"`
	To     time.Time   `json:"to,omitempty"`
}

// dateFields are tried in order when no explicit field is given.
var dateFields = []string{"createdAt", "date", "created_at"}

// Bounds resolves the filter window relative to now. bounded is false for the
// "all" preset.
func (r DateRange) Bounds(now time.Time) (from, to time.Time, bounded bool) {
	switch r.Preset {
	case "", RangeAll:
		return time.Time{}, time.Time{}, false
	case Range7D:
		return now.AddDate(0, 0, -7), now, true
	case Range30D:
		return now.AddDate(0, 0, -30), now, true
	case Range90D:
		return now.AddDate(0, 0, -90), now, true
	case Range6M:
		return now.AddDate(0, -6, 0), now, true
	case Range1Y:
		return now.AddDate(-1, 0, 0), now, true
	case RangeCustom:
		if r.From.IsZero() && r.To.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		to = r.To
		if to.IsZero() {
			to = now
		}
		return r.From, to, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FilterItems keeps items whose date field falls inside the window. Items with
// missing or unparseable dates pass the filter unfiltered (fail-open). Pass an
// empty field to use the default createdAt/date/created_at fallback chain.
func (r DateRange) FilterItems(items []Item, field string) []Item {
	from, to, bounded := r.Bounds(time.Now())
	if !bounded {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		ts, ok := itemDate(item, field)
		if !ok {
			out = append(out, item)
			continue
		}
		if (from.IsZero() || !ts.Before(from)) && (to.IsZero() || !ts.After(to)) {
			out = append(out, item)
		}
	}
	return out
}

// Key returns a stable identifier for memoization.
func (r DateRange) Key() string {
	if r.Preset == RangeCustom {
		return fmt.Sprintf("custom:%d:%d", r.From.Unix(), r.To.Unix())
	}
	if r.Preset == "" {
		return string(RangeAll)
	}
	return string(r.Preset)
}

func itemDate(item Item, field string) (time.Time, bool) {
	if field != "" {
		return parseDateValue(item[field])
	}
	for _, f := range dateFields {
		if v, ok := item[f]; ok {
			if ts, parsed := parseDateValue(v); parsed {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDateValue(v any) (time.Time, bool) {
	switch value := v.(type) {
	case time.Time:
		return value, true
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, value); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		return epochTime(value), true
	case int64:
		return epochTime(float64(value)), true
	case int:
		return epochTime(float64(value)), true
	default:
		return time.Time{}, false
	}
}

// epochTime accepts either second or millisecond precision timestamps.
func epochTime(v float64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(int64(v))
	}
	return time.Unix(int64(v), 0)
}
