// Package mapview keeps the embedded map centered on the tracker's current
// coordinates.
//
// The map widget only reads its center once, when it is created, so later
// coordinate changes have to be pushed to it imperatively. The Synchronizer
// does that, and only when the coordinates actually change, so user pan and
// zoom survive re-renders that leave the coordinates alone.
package mapview

import (
	"sync"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// MapWidget is a map that can be re-centered
type MapWidget interface {
	SetView(center models.MapCenter)
}

// StateSource is the part of the tracker controller the synchronizer binds to
type StateSource interface {
	State() models.State
	Subscribe(fn func(models.State)) (cancel func())
}

// Synchronizer re-centers a MapWidget whenever the target coordinates change
type Synchronizer struct {
	widget MapWidget

	mu     sync.Mutex
	last   models.MapCenter
	synced bool
}

// NewSynchronizer creates a synchronizer for widget
func NewSynchronizer(widget MapWidget) *Synchronizer {
	return &Synchronizer{widget: widget}
}

// Sync re-centers the widget on center unless it is already there.
// The first call always re-centers. It reports whether SetView was called.
// SetView runs under the lock so the widget ends on the last recorded center.
func (s *Synchronizer) Sync(center models.MapCenter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced && s.last == center {
		return false
	}
	s.last = center
	s.synced = true

	s.widget.SetView(center)
	return true
}

// Bind syncs to the source's current center and registers a callback that
// keeps syncing on every state change. Call the returned func on teardown.
func (s *Synchronizer) Bind(source StateSource) (unbind func()) {
	s.Sync(source.State().Center)
	return source.Subscribe(func(state models.State) {
		s.Sync(state.Center)
	})
}
