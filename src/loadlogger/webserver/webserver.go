package webserver

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/config"
	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/metrics"
	"github.com/gridstate/load-logger/src/loadlogger/notify"
	"github.com/gridstate/load-logger/src/loadlogger/scheduler"
)

// Version reported by the health endpoint.
const Version = "1.2.0"

func New(cfg config.Config, db *gorm.DB, settings *data.Settings, sched *scheduler.Scheduler, notifier *notify.Notifier, m *metrics.Metrics) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, settings, sched, notifier, m)
	return g
}
