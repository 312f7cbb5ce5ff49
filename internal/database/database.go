package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homeval/server/internal/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var (
	ErrNotFound  = errors.New("evaluation not found")
	ErrDuplicate = errors.New("evaluation already exists")
)

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the sqlite database at dbPath. ":memory:" gives a
// private in-memory database.
func NewDatabase(dbPath string, log *logrus.Logger) (*Database, error) {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps ":memory:"
	// databases shared across calls
	sqlDB.SetMaxOpenConns(1)

	return &Database{db: db, logger: log}, nil
}

// RunMigrations creates or updates the evaluations table
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.EvaluationRecord{}); err != nil {
		return fmt.Errorf("failed to migrate evaluations: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// Save inserts a new evaluation record
func (d *Database) Save(ctx context.Context, rec *models.EvaluationRecord) error {
	return InsertEvaluations(d.db.WithContext(ctx), []*models.EvaluationRecord{rec})
}

// InsertEvaluations inserts records using tx, which may be a transaction
func InsertEvaluations(tx *gorm.DB, recs []*models.EvaluationRecord) error {
	if len(recs) == 0 {
		return nil
	}
	if err := tx.Create(recs).Error; err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("failed to insert evaluations: %w", err)
	}
	return nil
}

// ListBySession returns the newest evaluations of a session first. limit
// defaults to 50 and is capped at 200.
func (d *Database) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.EvaluationRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	records := []models.EvaluationRecord{}
	err := d.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return records, nil
}

func (d *Database) GetByID(ctx context.Context, id string) (*models.EvaluationRecord, error) {
	var rec models.EvaluationRecord
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return &rec, nil
}

// Delete removes an evaluation owned by sessionID. Records of other sessions
// are reported as not found.
func (d *Database) Delete(ctx context.Context, id, sessionID string) error {
	result := d.db.WithContext(ctx).
		Where("id = ? AND session_id = ?", id, sessionID).
		Delete(&models.EvaluationRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete evaluation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	d.logger.WithFields(logrus.Fields{
		"evaluation_id": id,
		"session_id":    sessionID,
	}).Info("Deleted evaluation")
	return nil
}

// PurgeOlderThan removes evaluations created before cutoff and returns how
// many were removed
func (d *Database) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.EvaluationRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge evaluations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
