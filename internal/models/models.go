package models

import "time"

// Location is the geographic part of a lookup result
type Location struct {
	Country  string  `json:"country"`
	Region   string  `json:"region"`
	City     string  `json:"city"`
	Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng      float64 `json:"lng" validate:"gte=-180,lte=180"`
	Timezone string  `json:"timezone"` // Signed UTC offset, e.g. "-07:00" or "2"
}

// LookupResult is the normalized record describing where an IP address or
// domain resolves to and who operates it.
//
// Every provider response is mapped into this one shape before it reaches
// the tracker, so renderers never see provider-specific field names.
type LookupResult struct {
	IP       string   `json:"ip" validate:"required"`
	Location Location `json:"location"`
	ISP      string   `json:"isp"`
}

// Center returns the coordinates of the result as a map center
func (r *LookupResult) Center() MapCenter {
	return MapCenter{Lat: r.Location.Lat, Lng: r.Location.Lng}
}

// MapCenter is the coordinate pair the map view is kept synchronized to
type MapCenter struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// State is an immutable snapshot of a tracker session
type State struct {
	Query   string        `json:"query"`
	Result  *LookupResult `json:"result"` // nil until the first successful lookup
	Center  MapCenter     `json:"center"`
	Loading bool          `json:"loading"`
	Mobile  bool          `json:"mobile"`
	Seq     uint64        `json:"seq"` // Sequence number of the last issued lookup
}

// HistoryEntry is a successful lookup kept in the history store
type HistoryEntry struct {
	Query      string       `json:"query"`
	Result     LookupResult `json:"result"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// MapView describes what the embedded map currently shows
type MapView struct {
	Center   MapCenter `json:"center"`
	Zoom     int       `json:"zoom"`
	Popup    string    `json:"popup"`
	Revision uint64    `json:"revision"` // Incremented on every imperative re-center
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
