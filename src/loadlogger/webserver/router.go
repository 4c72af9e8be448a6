package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gridstate/load-logger/src/loadlogger/config"
	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/metrics"
	"github.com/gridstate/load-logger/src/loadlogger/notify"
	"github.com/gridstate/load-logger/src/loadlogger/scheduler"
)

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, settings *data.Settings, sched *scheduler.Scheduler, notifier *notify.Notifier, m *metrics.Metrics) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	statusH := NewStatus(db, sched, settings, notifier)
	loadH := NewLoad(db)
	subH := NewSubstations(db)
	settingsH := NewSettingsAPI(settings, sched, notifier)

	api := r.Group("/api")
	{
		api.GET("/health", statusH.Health)
		api.GET("/status", statusH.Status)
		api.GET("/cooperatives", statusH.Cooperatives)
		api.GET("/imports", statusH.Imports)
		api.GET("/next-import", statusH.NextImport)

		api.GET("/load/current/:id", loadH.Current)
		api.GET("/load/history/:id", loadH.History)
		api.GET("/load/stats/:id", loadH.Stats)

		api.GET("/substations/current/:id", subH.Current)
		api.GET("/substations/history/:id", subH.History)

		api.GET("/settings", settingsH.List)

		secured := api.Group("", APIKeyMiddleware(cfg.APIKey))
		secured.POST("/import/trigger", statusH.Trigger)
		secured.PUT("/settings", settingsH.Update)
		secured.POST("/settings/:key/reset", settingsH.Reset)
		secured.POST("/notifications/test", settingsH.TestEmail)
	}

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
}
