package mapview

import (
	"fmt"
	"sync"

	"github.com/evyataryagoni/iptracker/internal/models"
)

const DefaultZoom = 13

// View is the server-side model of the embedded map. The page polls it and
// calls setView in the browser only when Revision has moved.
type View struct {
	mu       sync.RWMutex
	center   models.MapCenter
	zoom     int
	revision uint64
}

// NewView creates a view at the given zoom level
func NewView(zoom int) *View {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &View{zoom: zoom}
}

// SetView implements MapWidget
func (v *View) SetView(center models.MapCenter) {
	v.mu.Lock()
	v.center = center
	v.revision++
	v.mu.Unlock()
}

// Snapshot returns what the map should show, with the popup for result
func (v *View) Snapshot(result *models.LookupResult) models.MapView {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return models.MapView{
		Center:   v.center,
		Zoom:     v.zoom,
		Popup:    PopupText(result),
		Revision: v.revision,
	}
}

// PopupText is the marker popup: "City, Country", or "No data" before any lookup
func PopupText(result *models.LookupResult) string {
	if result == nil {
		return "No data"
	}
	return fmt.Sprintf("%s, %s", result.Location.City, result.Location.Country)
}
