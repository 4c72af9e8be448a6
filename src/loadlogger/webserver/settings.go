package webserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/notify"
	"github.com/gridstate/load-logger/src/loadlogger/scheduler"
)

type SettingsAPI struct {
	settings *data.Settings
	sched    *scheduler.Scheduler
	notifier *notify.Notifier
}

func NewSettingsAPI(settings *data.Settings, sched *scheduler.Scheduler, notifier *notify.Notifier) SettingsAPI {
	return SettingsAPI{settings: settings, sched: sched, notifier: notifier}
}

func (h SettingsAPI) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.All()})
}

// Update writes persisted overrides. Each key reports its own success flag;
// a poll-interval change restarts the scheduler so it takes effect without
// a process restart.
func (h SettingsAPI) Update(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	results := make(map[string]bool, len(req))
	intervalChanged := false
	for key, value := range req {
		ok := h.settings.Set(key, toSettingString(value))
		results[key] = ok
		if ok && key == "poll_interval_minutes" {
			intervalChanged = true
		}
	}

	if intervalChanged {
		h.sched.Restart()
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// toSettingString normalizes JSON values to the settings store's string
// representation; whole-number floats lose the ".0" JSON decoding adds.
func toSettingString(v interface{}) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

func (h SettingsAPI) Reset(c *gin.Context) {
	key := c.Param("key")
	if !h.settings.Reset(key) {
		c.JSON(http.StatusNotFound, gin.H{"err": "unknown setting"})
		return
	}
	if key == "poll_interval_minutes" {
		h.sched.Restart()
	}
	c.JSON(http.StatusOK, gin.H{"reset": key})
}

func (h SettingsAPI) TestEmail(c *gin.Context) {
	if err := h.notifier.SendTest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"sent": false, "err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
