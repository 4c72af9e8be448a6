package data

import (
	"time"

	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
)

// LastImport returns the most recent import attempt, running or finished.
func LastImport(db *gorm.DB) (*types.ImportLog, error) {
	var entry types.ImportLog
	err := db.Order("started_at DESC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LastSuccessfulImport returns the most recent run that finished with
// status success.
func LastSuccessfulImport(db *gorm.DB) (*types.ImportLog, error) {
	var entry types.ImportLog
	err := db.Where("status = ?", types.ImportSuccess).Order("started_at DESC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ImportHistory returns finished and running attempts, newest first.
func ImportHistory(db *gorm.DB, limit int) ([]types.ImportLog, error) {
	var entries []types.ImportLog
	err := db.Order("started_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// ImportStats summarizes run outcomes over a trailing window.
type ImportStats struct {
	Total       int64   `json:"total"`
	Successful  int64   `json:"successful"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// ImportStatsSince counts runs started in the last N hours.
func ImportStatsSince(db *gorm.DB, hours int) (ImportStats, error) {
	cutoff := timeutil.Now().Add(-time.Duration(hours) * time.Hour)

	var stats ImportStats
	if err := db.Model(&types.ImportLog{}).
		Where("started_at >= ?", cutoff).
		Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&types.ImportLog{}).
		Where("started_at >= ? AND status = ?", cutoff, types.ImportSuccess).
		Count(&stats.Successful).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Successful
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	}
	return stats, nil
}
