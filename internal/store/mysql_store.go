package store

import (
	"fmt"
	"time"

	"github.com/evyataryagoni/iptracker/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LookupHistoryModel is the GORM model for the lookup_history table
type LookupHistoryModel struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Query      string    `gorm:"column:query;size:255"`
	IP         string    `gorm:"column:ip;size:45"`
	Country    string    `gorm:"column:country"`
	Region     string    `gorm:"column:region"`
	City       string    `gorm:"column:city"`
	Lat        float64   `gorm:"column:lat"`
	Lng        float64   `gorm:"column:lng"`
	Timezone   string    `gorm:"column:timezone;size:64"`
	ISP        string    `gorm:"column:isp"`
	RecordedAt time.Time `gorm:"column:recorded_at;index"`
}

// TableName overrides GORM's default pluralized name
func (LookupHistoryModel) TableName() string {
	return "lookup_history"
}

// MySQLStore implements Store using MySQL with GORM
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore connects to MySQL and makes sure the history table exists
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if err := db.AutoMigrate(&LookupHistoryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate lookup_history table: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// Save implements the Store interface
func (s *MySQLStore) Save(entry models.HistoryEntry) error {
	record := toModel(entry)
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent implements the Store interface
func (s *MySQLStore) Recent(limit int) ([]models.HistoryEntry, error) {
	var records []LookupHistoryModel

	query := s.db.Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	entries := make([]models.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, fromModel(record))
	}
	return entries, nil
}

// IsEmpty reports whether the history table has no rows
func (s *MySQLStore) IsEmpty() (bool, error) {
	var count int64
	if err := s.db.Model(&LookupHistoryModel{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count history rows: %w", err)
	}
	return count == 0, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func toModel(entry models.HistoryEntry) LookupHistoryModel {
	loc := entry.Result.Location
	return LookupHistoryModel{
		Query:      entry.Query,
		IP:         entry.Result.IP,
		Country:    loc.Country,
		Region:     loc.Region,
		City:       loc.City,
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		Timezone:   loc.Timezone,
		ISP:        entry.Result.ISP,
		RecordedAt: entry.RecordedAt,
	}
}

func fromModel(record LookupHistoryModel) models.HistoryEntry {
	return models.HistoryEntry{
		Query:      record.Query,
		RecordedAt: record.RecordedAt,
		Result: models.LookupResult{
			IP: record.IP,
			Location: models.Location{
				Country:  record.Country,
				Region:   record.Region,
				City:     record.City,
				Lat:      record.Lat,
				Lng:      record.Lng,
				Timezone: record.Timezone,
			},
			ISP: record.ISP,
		},
	}
}
