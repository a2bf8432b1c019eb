package dashboard

import (
	"fmt"
	"sync"
)

// EditSession is the in-memory edit buffer for one dashboard. Drag/resize
// mutations apply optimistically to the buffer; nothing reaches the store
// until the session is saved, and discarding reverts to the last persisted
// state.
type EditSession struct {
	mu       sync.Mutex
	original Dashboard
	buffer   Dashboard
	dirty    bool
}

// NewEditSession copies the dashboard into a fresh buffer.
func NewEditSession(d Dashboard) *EditSession {
	return &EditSession{
		original: CloneDashboard(d),
		buffer:   CloneDashboard(d),
	}
}

// Dashboard returns a copy of the current buffer state.
func (s *EditSession) Dashboard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneDashboard(s.buffer)
}

// Dirty reports whether the buffer has unsaved changes.
func (s *EditSession) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MoveWidget repositions a widget on the lg grid and re-compacts vertically.
func (s *EditSession) MoveWidget(widgetID string, x, y int) error {
	return s.mutateLayout(widgetID, func(l *WidgetLayout) error {
		if x < 0 || y < 0 || x+l.W > GridColumns {
			return fmt.Errorf("dashboard: position (%d,%d) is outside the grid for a %d-wide widget", x, y, l.W)
		}
		l.X, l.Y = x, y
		return nil
	})
}

// ResizeWidget changes a widget's size on the lg grid, honoring its min/max
// bounds, and re-compacts vertically.
func (s *EditSession) ResizeWidget(widgetID string, w, h int) error {
	return s.mutateLayout(widgetID, func(l *WidgetLayout) error {
		if w <= 0 || h <= 0 || w > GridColumns {
			return fmt.Errorf("dashboard: size %dx%d is invalid", w, h)
		}
		if l.X+w > GridColumns {
			return fmt.Errorf("dashboard: width %d overflows the grid at column %d", w, l.X)
		}
		if (l.MinW > 0 && w < l.MinW) || (l.MinH > 0 && h < l.MinH) {
			return fmt.Errorf("dashboard: size %dx%d is below the widget minimum %dx%d", w, h, l.MinW, l.MinH)
		}
		if (l.MaxW > 0 && w > l.MaxW) || (l.MaxH > 0 && h > l.MaxH) {
			return fmt.Errorf("dashboard: size %dx%d exceeds the widget maximum", w, h)
		}
		l.W, l.H = w, h
		return nil
	})
}

func (s *EditSession) mutateLayout(widgetID string, mutate func(*WidgetLayout) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.buffer.Widgets {
		if s.buffer.Widgets[i].ID == widgetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("dashboard: widget %s not found", widgetID)
	}
	layout := s.buffer.Widgets[idx].Layout
	if err := mutate(&layout); err != nil {
		return err
	}
	s.buffer.Widgets[idx].Layout = layout
	s.compact()
	s.dirty = true
	return nil
}

// UpdateWidget replaces a widget's configuration fields in the buffer. The
// id, and therefore identity, never changes.
func (s *EditSession) UpdateWidget(updated Widget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buffer.Widgets {
		if s.buffer.Widgets[i].ID == updated.ID {
			s.buffer.Widgets[i] = cloneWidget(updated)
			s.dirty = true
			return nil
		}
	}
	return fmt.Errorf("dashboard: widget %s not found", updated.ID)
}

// AddWidget appends a widget to the buffer.
func (s *EditSession) AddWidget(w Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Widgets = append(s.buffer.Widgets, cloneWidget(w))
	s.dirty = true
}

// RemoveWidget deletes a widget from the buffer and re-compacts.
func (s *EditSession) RemoveWidget(widgetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.buffer.Widgets {
		if s.buffer.Widgets[i].ID == widgetID {
			s.buffer.Widgets = append(s.buffer.Widgets[:i], s.buffer.Widgets[i+1:]...)
			s.compact()
			s.dirty = true
			return true
		}
	}
	return false
}

// compact applies vertical compaction to the buffered lg layout. Callers hold
// the mutex.
func (s *EditSession) compact() {
	rects := make([]WidgetLayout, len(s.buffer.Widgets))
	for i, w := range s.buffer.Widgets {
		rects[i] = w.Layout
	}
	for i, rect := range CompactVertically(rects) {
		s.buffer.Widgets[i].Layout = rect
	}
}

// Snapshot returns the buffer for persistence and marks the session clean.
func (s *EditSession) Snapshot() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	return CloneDashboard(s.buffer)
}

// Discard drops the buffer and returns the last persisted state.
func (s *EditSession) Discard() Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = CloneDashboard(s.original)
	s.dirty = false
	return CloneDashboard(s.original)
}
