package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestCSVStore_CreatesFileWithHeader tests initialization of a new file
func TestCSVStore_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.csv")

	_, err := NewCSVStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if !strings.HasPrefix(string(data), "recorded_at,query,ip,") {
		t.Errorf("expected header row, got %q", string(data))
	}
}

// TestCSVStore_SaveAndRecent tests the round trip through the file
func TestCSVStore_SaveAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store, _ := NewCSVStore(path)

	store.Save(entryFor("8.8.8.8", 37.40599, -122.078514))
	store.Save(entryFor("São Paulo, Brazil", -23.5505, -46.6333))

	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	// Newest first, commas in the query survive quoting
	if entries[0].Query != "São Paulo, Brazil" {
		t.Errorf("expected quoted query to round trip, got %q", entries[0].Query)
	}
	if entries[1].Result.Location.Lng != -122.078514 {
		t.Errorf("expected lng -122.078514, got %v", entries[1].Result.Location.Lng)
	}
	if entries[1].Result.Location.Timezone != "-07:00" {
		t.Errorf("expected timezone -07:00, got %s", entries[1].Result.Location.Timezone)
	}
	if !entries[1].RecordedAt.Equal(entryFor("", 0, 0).RecordedAt) {
		t.Errorf("unexpected recorded_at %v", entries[1].RecordedAt)
	}
}

// TestCSVStore_ReopenKeepsEntries tests that an existing file is appended to
func TestCSVStore_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")

	first, _ := NewCSVStore(path)
	first.Save(entryFor("1.1.1.1", 0, 0))

	second, err := NewCSVStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second.Save(entryFor("8.8.8.8", 0, 0))

	entries, _ := second.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Query != "1.1.1.1" {
		t.Errorf("expected oldest first, got %s", entries[0].Query)
	}
}

// TestCSVStore_SkipsInvalidRows tests tolerant parsing
func TestCSVStore_SkipsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "recorded_at,query,ip,country,region,city,lat,lng,timezone,isp\n" +
		"2024-05-01T10:00:00Z,8.8.8.8,8.8.8.8,US,California,Mountain View,37.4,-122.07,-07:00,Google LLC\n" +
		"not-a-time,1.1.1.1,1.1.1.1,AU,,Sydney,-33.8,151.2,+10:00,Cloudflare\n" +
		"2024-05-01T10:00:00Z,too,few\n" +
		"2024-05-01T10:00:00Z,9.9.9.9,9.9.9.9,US,,Berkeley,north,-122.2,-07:00,Quad9\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	store, _ := NewCSVStore(path)
	entries, err := store.Entries()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 valid entry, got %d", len(entries))
	}
}

// TestCSVStore_EmptyPath tests the constructor error
func TestCSVStore_EmptyPath(t *testing.T) {
	if _, err := NewCSVStore(""); err == nil {
		t.Error("expected error for empty path, got nil")
	}
}

// TestImport tests copying a CSV history into another backend
func TestImport(t *testing.T) {
	src, _ := NewCSVStore(filepath.Join(t.TempDir(), "history.csv"))
	src.Save(entryFor("1.1.1.1", 0, 0))
	src.Save(entryFor("8.8.8.8", 0, 0))

	dst := NewMockStore()
	count, err := Import(dst, src)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 imported entries, got %d", count)
	}
	if saved := dst.Saved(); len(saved) != 2 || saved[0].Query != "1.1.1.1" {
		t.Errorf("expected oldest first import, got %+v", saved)
	}
}
