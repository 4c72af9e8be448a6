package webserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/importer"
	"github.com/gridstate/load-logger/src/loadlogger/notify"
	"github.com/gridstate/load-logger/src/loadlogger/scheduler"
	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
)

type Status struct {
	db       *gorm.DB
	sched    *scheduler.Scheduler
	settings *data.Settings
	notifier *notify.Notifier
	started  time.Time
}

func NewStatus(db *gorm.DB, sched *scheduler.Scheduler, settings *data.Settings, notifier *notify.Notifier) Status {
	return Status{db: db, sched: sched, settings: settings, notifier: notifier, started: time.Now()}
}

func (s Status) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": timeutil.Now(),
		"version":   Version,
	})
}

func importLogJSON(e *types.ImportLog) gin.H {
	if e == nil {
		return nil
	}
	return gin.H{
		"id":                   e.ID,
		"run_id":               e.RunID,
		"started_at":           e.StartedAt,
		"completed_at":         e.CompletedAt,
		"status":               e.Status,
		"load_imported":        e.LoadImported,
		"load_skipped":         e.LoadSkipped,
		"substations_imported": e.SubstationsImported,
		"substations_skipped":  e.SubstationsSkipped,
		"error":                e.ErrorMessage,
		"duration_seconds":     e.DurationSeconds,
	}
}

func (s Status) Status(c *gin.Context) {
	lastImport, err := data.LastImport(s.db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	lastSuccess, _ := data.LastSuccessfulImport(s.db)
	stats24h, _ := data.ImportStatsSince(s.db, 24)

	var loadCount, subCount, coopCount int64
	s.db.Model(&types.LoadData{}).Count(&loadCount)
	s.db.Model(&types.SubstationSnapshot{}).Count(&subCount)
	s.db.Model(&types.Cooperative{}).Count(&coopCount)

	var bounds struct {
		Oldest *time.Time
		Newest *time.Time
	}
	s.db.Model(&types.LoadData{}).
		Select("MIN(timestamp) AS oldest, MAX(timestamp) AS newest").
		Scan(&bounds)

	// Overall health: degraded when the latest run failed, unhealthy when
	// most of the last day failed.
	overall := "healthy"
	if lastImport != nil && lastImport.Status == types.ImportFailed {
		overall = "degraded"
	}
	if stats24h.Total > 0 && stats24h.SuccessRate < 50 {
		overall = "unhealthy"
	}

	var lastSuccessAt *time.Time
	if lastSuccess != nil {
		lastSuccessAt = lastSuccess.CompletedAt
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                 overall,
		"uptime_seconds":         time.Since(s.started).Seconds(),
		"last_import":            importLogJSON(lastImport),
		"last_successful_import": lastSuccessAt,
		"imports_last_24h":       stats24h.Total,
		"success_rate_24h":       stats24h.SuccessRate,
		"database_stats": gin.H{
			"total_load_records":       loadCount,
			"total_substation_records": subCount,
			"total_cooperatives":       coopCount,
			"oldest_record":            bounds.Oldest,
			"newest_record":            bounds.Newest,
		},
		"scheduler_running":     s.sched.Running(),
		"next_import":           s.sched.NextRun(),
		"notifications_enabled": s.notifier.Enabled(),
		"poll_interval_minutes": s.settings.GetInt("poll_interval_minutes"),
	})
}

func (s Status) Cooperatives(c *gin.Context) {
	var coops []types.Cooperative
	if err := s.db.Order("name").Find(&coops).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(coops))
	for _, coop := range coops {
		out = append(out, gin.H{
			"id":           coop.ID,
			"name":         coop.Name,
			"abbreviation": coop.Abbreviation,
			"is_aggregate": coop.IsAggregate,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s Status) Imports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	entries, err := data.ImportHistory(s.db, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for i := range entries {
		out = append(out, importLogJSON(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s Status) Trigger(c *gin.Context) {
	res, err := s.sched.TriggerImport(c.Request.Context())
	if errors.Is(err, importer.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s Status) NextImport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"next_import": s.sched.NextRun()})
}
