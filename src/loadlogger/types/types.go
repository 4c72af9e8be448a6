package types

import "time"

// Cooperative is one distribution area cached from the upstream API.
// Upstream is authoritative: rows are upserted by the importer's cooperative
// sync and never deleted here.
type Cooperative struct {
	ID           uint32 `gorm:"primaryKey"`
	Name         string `gorm:"size:255;not null"`
	Abbreviation string `gorm:"size:16;not null"`
	IsAggregate  bool   `gorm:"default:false"`
	UpdatedAt    time.Time
}

// LoadData is one historical load reading. (area_id, timestamp) is unique;
// re-imports of the same reading are dropped by the conflict clause.
type LoadData struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	AreaID    uint32    `gorm:"not null;uniqueIndex:uq_load_area_ts,priority:1;index:idx_load_area_time,priority:1"`
	Timestamp time.Time `gorm:"not null;uniqueIndex:uq_load_area_ts,priority:2;index:idx_load_area_time,priority:2;index:idx_load_ts"`
	LoadKW    float64   `gorm:"not null"`
	CreatedAt time.Time
}

// SubstationSnapshot is one substation reading at one 5-minute mark.
// (area_id, snapshot_time, substation_name) is unique. Quality flags are
// pointers because upstream sometimes omits them.
type SubstationSnapshot struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	AreaID         uint32    `gorm:"not null;uniqueIndex:uq_substation_snapshot,priority:1;index:idx_substation_area_time,priority:1"`
	SnapshotTime   time.Time `gorm:"not null;uniqueIndex:uq_substation_snapshot,priority:2;index:idx_substation_area_time,priority:2"`
	SubstationName string    `gorm:"size:255;not null;uniqueIndex:uq_substation_snapshot,priority:3"`
	KW             float64   `gorm:"not null"`
	KVar           float64   `gorm:"not null"`
	PF             float64   `gorm:"not null"`
	Quality        *bool
	QualityNow     *bool
	CreatedAt      time.Time
}

// Import run statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportFailed  = "failed"
)

// ImportLog is the audit trail: one row per import attempt, created with
// status running and finalized exactly once.
type ImportLog struct {
	ID                  uint64 `gorm:"primaryKey;autoIncrement"`
	RunID               string `gorm:"size:36;index"`
	StartedAt           time.Time `gorm:"not null;index:idx_import_log_started"`
	CompletedAt         *time.Time
	Status              string `gorm:"size:20;not null;default:running"`
	LoadImported        int    `gorm:"default:0"`
	LoadSkipped         int    `gorm:"default:0"`
	SubstationsImported int    `gorm:"default:0"`
	SubstationsSkipped  int    `gorm:"default:0"`
	ErrorMessage        string `gorm:"type:text"`
	DurationSeconds     float64
}

// Setting is a persisted override for one configurable key. Absence of a row
// means the environment or compiled default applies.
type Setting struct {
	Key         string  `gorm:"primaryKey;size:64"`
	Value       *string `gorm:"size:256"`
	Description string  `gorm:"size:256"`
	UpdatedAt   time.Time
}
