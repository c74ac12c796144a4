package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tickerlens/tickerlens/pkg/models"
)

// ErrDatabaseMissing signals that the database file does not exist yet.
var ErrDatabaseMissing = errors.New("storage: database not found, run `tickerlens setup` first")

// Company is a row of the ticker registry. Rows are bootstrapped once
// from the SEC company list and read in id order afterwards.
type Company struct {
	ID     uint   `gorm:"primaryKey"`
	Ticker string `gorm:"column:ticker;not null"`
	Name   string `gorm:"column:name;not null"`
}

func (Company) TableName() string { return "companies" }

// AnalysisResult is one saved per-video analysis. The video ID is the
// primary key, so re-analyzing a video replaces its previous row.
type AnalysisResult struct {
	VideoID      string `gorm:"column:video_id;primaryKey"`
	Tickers      string `gorm:"column:tickers"`
	Sentiment    string `gorm:"column:sentiment"`
	Summary      string `gorm:"column:summary"`
	AnalysisDate string `gorm:"column:analysis_date"`
	PublishDate  string `gorm:"column:publish_date"`
}

func (AnalysisResult) TableName() string { return "analysis_results" }

// Store wraps the SQLite database holding the company registry and
// analysis results.
type Store struct {
	db *gorm.DB
}

// Open opens an existing database. It refuses to create one, so a
// missing file surfaces as ErrDatabaseMissing instead of an empty
// registry downstream.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, path)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}
	return open(path)
}

// OpenOrCreate opens the database, creating the file and migrating the
// schema when needed.
func OpenOrCreate(path string) (*Store, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if err := s.db.AutoMigrate(&Company{}, &AnalysisResult{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Companies returns the full ticker registry in insertion order.
func (s *Store) Companies(ctx context.Context) ([]models.Company, error) {
	var rows []Company
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	companies := make([]models.Company, len(rows))
	for i, row := range rows {
		companies[i] = models.Company{Ticker: row.Ticker, Name: row.Name}
	}
	return companies, nil
}

// InsertCompanies stores the registry rows in the given order.
func (s *Store) InsertCompanies(ctx context.Context, companies []models.Company) error {
	if len(companies) == 0 {
		return nil
	}
	rows := make([]Company, len(companies))
	for i, c := range companies {
		rows[i] = Company{Ticker: c.Ticker, Name: c.Name}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 500).Error; err != nil {
		return fmt.Errorf("insert companies: %w", err)
	}
	return nil
}

// UpsertResult inserts the analysis result, replacing any existing row
// for the same video.
func (s *Store) UpsertResult(ctx context.Context, result AnalysisResult) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		UpdateAll: true,
	}).Create(&result).Error
	if err != nil {
		return fmt.Errorf("save analysis for %s: %w", result.VideoID, err)
	}
	return nil
}

// Result returns the saved analysis for one video.
func (s *Store) Result(ctx context.Context, videoID string) (AnalysisResult, error) {
	var row AnalysisResult
	err := s.db.WithContext(ctx).First(&row, "video_id = ?", videoID).Error
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load analysis for %s: %w", videoID, err)
	}
	return row, nil
}

// CompanyCount returns the size of the ticker registry.
func (s *Store) CompanyCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Company{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

// ResultCount returns the number of saved analyses.
func (s *Store) ResultCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&AnalysisResult{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}
