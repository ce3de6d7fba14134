package tracker

import (
	"testing"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// TestPanel tests the four labelled fields
func TestPanel(t *testing.T) {
	result := &models.LookupResult{
		IP: "8.8.8.8",
		Location: models.Location{
			Country: "US", Region: "California", City: "Mountain View",
			Lat: 37.40599, Lng: -122.078514, Timezone: "-07:00",
		},
		ISP: "Google LLC",
	}

	fields := Panel(result)

	expected := []Field{
		{"IP ADDRESS", "8.8.8.8"},
		{"LOCATION", "Mountain View, California"},
		{"TIMEZONE", "UTC -07:00"},
		{"ISP", "Google LLC"},
	}
	if len(fields) != len(expected) {
		t.Fatalf("expected %d fields, got %d", len(expected), len(fields))
	}
	for i, field := range expected {
		if fields[i] != field {
			t.Errorf("field %d: expected %+v, got %+v", i, field, fields[i])
		}
	}
}

// TestPanel_NoResult tests that the panel is hidden before any lookup
func TestPanel_NoResult(t *testing.T) {
	if fields := Panel(nil); fields != nil {
		t.Errorf("expected no fields, got %+v", fields)
	}
}

// TestFormatTimezone tests offset formatting
func TestFormatTimezone(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-07:00", "UTC -07:00"},
		{"+05:30", "UTC +05:30"},
		{"2", "UTC +2"},
		{"Europe/London", "Europe/London"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatTimezone(tt.input); got != tt.expected {
				t.Errorf("FormatTimezone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestJoinNonEmpty tests location formatting with missing parts
func TestJoinNonEmpty(t *testing.T) {
	if got := joinNonEmpty("Paris", ""); got != "Paris" {
		t.Errorf("expected Paris, got %q", got)
	}
}
