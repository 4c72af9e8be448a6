package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
	"github.com/gridstate/load-logger/src/loadlogger/types"
)

type Load struct {
	db *gorm.DB
}

func NewLoad(db *gorm.DB) Load {
	return Load{db: db}
}

func findCooperative(c *gin.Context, db *gorm.DB) (types.Cooperative, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad area id"})
		return types.Cooperative{}, false
	}

	var coop types.Cooperative
	if err := db.First(&coop, "id = ?", uint32(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "area not found"})
		return types.Cooperative{}, false
	}
	return coop, true
}

// timeRange applies start/end/hours query filters onto a load or snapshot
// query. hours wins over an explicit range, matching the original API.
func timeRange(c *gin.Context, q *gorm.DB, column string) (*gorm.DB, bool) {
	if hours, err := strconv.Atoi(c.Query("hours")); err == nil && hours > 0 {
		cutoff := timeutil.Now().Add(-time.Duration(hours) * time.Hour)
		return q.Where(column+" >= ?", cutoff), true
	}
	if start := c.Query("start"); start != "" {
		t, err := time.ParseInLocation(time.RFC3339, start, timeutil.Zone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": "bad start time"})
			return nil, false
		}
		q = q.Where(column+" >= ?", t)
	}
	if end := c.Query("end"); end != "" {
		t, err := time.ParseInLocation(time.RFC3339, end, timeutil.Zone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"err": "bad end time"})
			return nil, false
		}
		q = q.Where(column+" <= ?", t)
	}
	return q, true
}

func (l Load) Current(c *gin.Context) {
	coop, ok := findCooperative(c, l.db)
	if !ok {
		return
	}

	var latest types.LoadData
	err := l.db.Where("area_id = ?", coop.ID).Order("timestamp DESC").First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"err": "no load data available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area_id":   coop.ID,
		"area_name": coop.Name,
		"load_kw":   latest.LoadKW,
		"timestamp": latest.Timestamp,
	})
}

func (l Load) History(c *gin.Context) {
	coop, ok := findCooperative(c, l.db)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	if limit < 1 || limit > 10000 {
		limit = 1000
	}

	q := l.db.Model(&types.LoadData{}).Where("area_id = ?", coop.ID)
	q, ok = timeRange(c, q, "timestamp")
	if !ok {
		return
	}

	var rows []types.LoadData
	if err := q.Order("timestamp").Limit(limit).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	points := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		points = append(points, gin.H{"timestamp": r.Timestamp, "load_kw": r.LoadKW})
	}
	c.JSON(http.StatusOK, gin.H{
		"area_id":   coop.ID,
		"area_name": coop.Name,
		"data":      points,
		"count":     len(points),
	})
}

func (l Load) Stats(c *gin.Context) {
	coop, ok := findCooperative(c, l.db)
	if !ok {
		return
	}

	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if hours < 1 {
		hours = 24
	}
	cutoff := timeutil.Now().Add(-time.Duration(hours) * time.Hour)

	var stats struct {
		Count int64
		Min   *float64
		Max   *float64
		Avg   *float64
	}
	err := l.db.Model(&types.LoadData{}).
		Select("COUNT(id) AS count, MIN(load_kw) AS min, MAX(load_kw) AS max, AVG(load_kw) AS avg").
		Where("area_id = ? AND timestamp >= ?", coop.ID, cutoff).
		Scan(&stats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"area_id":      coop.ID,
		"area_name":    coop.Name,
		"period_hours": hours,
		"record_count": stats.Count,
		"min_kw":       stats.Min,
		"max_kw":       stats.Max,
		"avg_kw":       stats.Avg,
	})
}
