package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/types"
)

type Substations struct {
	db *gorm.DB
}

func NewSubstations(db *gorm.DB) Substations {
	return Substations{db: db}
}

func snapshotJSON(s types.SubstationSnapshot) gin.H {
	return gin.H{
		"substation_name": s.SubstationName,
		"kw":              s.KW,
		"kvar":            s.KVar,
		"pf":              s.PF,
		"quality":         s.Quality,
		"quality_now":     s.QualityNow,
	}
}

func (h Substations) Current(c *gin.Context) {
	coop, ok := findCooperative(c, h.db)
	if !ok {
		return
	}

	var latest types.SubstationSnapshot
	err := h.db.Where("area_id = ?", coop.ID).Order("snapshot_time DESC").First(&latest).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"err": "no substation data available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	var rows []types.SubstationSnapshot
	err = h.db.Where("area_id = ? AND snapshot_time = ?", coop.ID, latest.SnapshotTime).
		Order("substation_name").
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	subs := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, snapshotJSON(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"area_id":       coop.ID,
		"area_name":     coop.Name,
		"snapshot_time": latest.SnapshotTime,
		"substations":   subs,
	})
}

func (h Substations) History(c *gin.Context) {
	coop, ok := findCooperative(c, h.db)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	q := h.db.Model(&types.SubstationSnapshot{}).Where("area_id = ?", coop.ID)
	if name := c.Query("substation"); name != "" {
		q = q.Where("substation_name = ?", name)
	}
	q, ok = timeRange(c, q, "snapshot_time")
	if !ok {
		return
	}

	var rows []types.SubstationSnapshot
	if err := q.Order("snapshot_time DESC").Limit(limit).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		entry := snapshotJSON(r)
		entry["snapshot_time"] = r.SnapshotTime
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{
		"area_id":   coop.ID,
		"area_name": coop.Name,
		"data":      out,
		"count":     len(out),
	})
}
