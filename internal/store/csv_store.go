package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/evyataryagoni/iptracker/internal/models"
)

// csvHeader is the first row of every history file
var csvHeader = []string{"recorded_at", "query", "ip", "country", "region", "city", "lat", "lng", "timezone", "isp"}

// CSVStore appends history entries to a CSV file.
//
// CSV Format: recorded_at,query,ip,country,region,city,lat,lng,timezone,isp
// Example: 2024-05-01T10:00:00Z,8.8.8.8,8.8.8.8,US,California,Mountain View,37.40599,-122.078514,-07:00,Google LLC
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore opens (or creates) the history file at filePath
func NewCSVStore(filePath string) (*CSVStore, error) {
	if filePath == "" {
		return nil, fmt.Errorf("CSV history path is empty")
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	info, err := os.Stat(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0):
		// New file: write the header row
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer file.Close()

		writer := csv.NewWriter(file)
		if err := writer.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	return &CSVStore{path: filePath}, nil
}

// Save implements the Store interface by appending one row
func (s *CSVStore) Save(entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(toRecord(entry)); err != nil {
		return fmt.Errorf("failed to write CSV record: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// Recent implements the Store interface
func (s *CSVStore) Recent(limit int) ([]models.HistoryEntry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]models.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= len(entries)-limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// Entries returns every entry in file order (oldest first).
// Rows that cannot be parsed are skipped.
func (s *CSVStore) Entries() ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var entries []models.HistoryEntry
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}

		// Skip header row
		if line == 0 {
			continue
		}

		entry, ok := fromRecord(record)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Close implements the Store interface; the file is only open during calls
func (s *CSVStore) Close() error {
	return nil
}

func toRecord(entry models.HistoryEntry) []string {
	loc := entry.Result.Location
	return []string{
		entry.RecordedAt.UTC().Format(time.RFC3339),
		entry.Query,
		entry.Result.IP,
		loc.Country,
		loc.Region,
		loc.City,
		strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		strconv.FormatFloat(loc.Lng, 'f', -1, 64),
		loc.Timezone,
		entry.Result.ISP,
	}
}

func fromRecord(record []string) (models.HistoryEntry, bool) {
	if len(record) != len(csvHeader) {
		return models.HistoryEntry{}, false
	}

	recordedAt, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return models.HistoryEntry{}, false
	}
	lat, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return models.HistoryEntry{}, false
	}
	lng, err := strconv.ParseFloat(record[7], 64)
	if err != nil {
		return models.HistoryEntry{}, false
	}

	return models.HistoryEntry{
		Query:      record[1],
		RecordedAt: recordedAt,
		Result: models.LookupResult{
			IP: record[2],
			Location: models.Location{
				Country:  record[3],
				Region:   record[4],
				City:     record[5],
				Lat:      lat,
				Lng:      lng,
				Timezone: record[8],
			},
			ISP: record[9],
		},
	}, true
}

// Import copies every entry of src into dst, oldest first, and returns how
// many were copied
func Import(dst Store, src *CSVStore) (int, error) {
	entries, err := src.Entries()
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if err := dst.Save(entry); err != nil {
			return count, fmt.Errorf("failed to store entry for %s: %w", entry.Query, err)
		}
		count++
	}
	return count, nil
}
