package dashboard

import (
	"encoding/json"
	"fmt"
)

// CloneSnapshot deep-clones a dataset through a JSON round-trip, guaranteeing
// the result is serializable (no functions, no cycles) as required by the
// public/unauthenticated share path.
func CloneSnapshot(ds Dataset) (*Dataset, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("dashboard: snapshot is not serializable: %w", err)
	}
	var clone Dataset
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, fmt.Errorf("dashboard: rebuild snapshot: %w", err)
	}
	return &clone, nil
}

// CloneDashboard deep-copies a dashboard, including its widgets and snapshot.
// Edit sessions mutate clones so canceling an edit never touches the
// persisted version.
func CloneDashboard(d Dashboard) Dashboard {
	clone := d
	clone.Widgets = make([]Widget, len(d.Widgets))
	for i, w := range d.Widgets {
		clone.Widgets[i] = cloneWidget(w)
	}
	if d.DataSnapshot != nil {
		snap, err := CloneSnapshot(*d.DataSnapshot)
		if err != nil {
			// Never alias the source snapshot; an unserializable one is
			// dropped rather than shared with the clone.
			snap = nil
		}
		clone.DataSnapshot = snap
	}
	return clone
}

func cloneWidget(w Widget) Widget {
	clone := w
	clone.Config = cloneConfig(w.Config)
	return clone
}

func cloneConfig(cfg WidgetConfig) WidgetConfig {
	clone := cfg
	clone.ShowLegend = cloneBool(cfg.ShowLegend)
	clone.ShowLabels = cloneBool(cfg.ShowLabels)
	clone.ShowGrid = cloneBool(cfg.ShowGrid)
	clone.Animate = cloneBool(cfg.Animate)
	if cfg.ExternalAPI != nil {
		api := *cfg.ExternalAPI
		if cfg.ExternalAPI.Headers != nil {
			api.Headers = make(map[string]string, len(cfg.ExternalAPI.Headers))
			for k, v := range cfg.ExternalAPI.Headers {
				api.Headers[k] = v
			}
		}
		clone.ExternalAPI = &api
	}
	return clone
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}
