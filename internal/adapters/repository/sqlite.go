package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/bankpredict/internal/domain/model"
	"github.com/okian/bankpredict/pkg/logger"
	"github.com/okian/bankpredict/pkg/metrics"
)

// predictionRow is the persisted form of model.PredictionRecord.
type predictionRow struct {
	ID           uint   `gorm:"primaryKey"`
	RequestID    string `gorm:"size:64;uniqueIndex"`
	Decision     bool   `gorm:"index"`
	Probability  float64
	LatencyMs    float64
	CustomerJSON string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index"`
}

func (predictionRow) TableName() string { return "prediction_records" }

func toRow(rec model.PredictionRecord) (predictionRow, error) { //nolint:gocritic // hugeParam
	payload, err := json.Marshal(rec.Customer)
	if err != nil {
		return predictionRow{}, fmt.Errorf("encode customer: %w", err)
	}
	return predictionRow{
		RequestID:    rec.RequestID,
		Decision:     rec.Decision,
		Probability:  rec.Probability,
		LatencyMs:    rec.LatencyMs,
		CustomerJSON: string(payload),
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (r *predictionRow) record() (model.PredictionRecord, error) {
	var c model.Customer
	if err := json.Unmarshal([]byte(r.CustomerJSON), &c); err != nil {
		return model.PredictionRecord{}, fmt.Errorf("decode customer for %s: %w", r.RequestID, err)
	}
	return model.PredictionRecord{
		RequestID:   r.RequestID,
		Customer:    c,
		Decision:    r.Decision,
		Probability: r.Probability,
		LatencyMs:   r.LatencyMs,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// SQLiteStore persists history in a SQLite file through gorm.
type SQLiteStore struct {
	db  *gorm.DB
	cfg sqliteConfig

	mu     sync.Mutex // serialises writers; SQLite allows one at a time
	closed bool
	log    logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates the schema.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	var cfg sqliteConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if cfg.verbose {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}
	db, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&predictionRow{}); err != nil {
		return nil, fmt.Errorf("%w: auto migrate: %w", ErrOpenStore, err)
	}

	s := &SQLiteStore{db: db, cfg: cfg, log: logger.Get().Named("history-sqlite")}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		s.log.Warn(ctx, "enable WAL mode", logger.Error(err))
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		s.log.Warn(ctx, "set synchronous pragma", logger.Error(err))
	}
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateHistoryRecords(n)
	}
	return s, nil
}

// Save inserts rec and prunes the oldest rows beyond the configured cap.
func (s *SQLiteStore) Save(ctx context.Context, rec model.PredictionRecord) error { //nolint:gocritic // hugeParam
	row, err := toRow(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert prediction %s: %w", rec.RequestID, err)
		}
		if s.cfg.maxRecords > 0 {
			keep := tx.Model(&predictionRow{}).Select("id").Order("id DESC").Limit(s.cfg.maxRecords)
			if err := tx.Where("id NOT IN (?)", keep).Delete(&predictionRow{}).Error; err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
		}
		var n int64
		if err := tx.Model(&predictionRow{}).Count(&n).Error; err == nil {
			metrics.UpdateHistoryRecords(int(n))
		}
		return nil
	})
}

// Recent returns up to n records, newest first by insertion.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]model.PredictionRecord, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	if s.isClosed() {
		return nil, ErrClosed
	}
	var rows []predictionRow
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	out := make([]model.PredictionRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&predictionRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
